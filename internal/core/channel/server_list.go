package channel

import (
	"context"
	"net"
	"strings"

	"agentcore/internal/apperrors"
)

// serverList is the ordered sequence of host:port endpoints parsed from
// configuration. It is only ever touched by the channel-health worker.
type serverList struct {
	endpoints  []string
	lastIndex  int
	hasLastIdx bool
}

func newServerList(backendService string) (*serverList, error) {
	sl := &serverList{lastIndex: -1}
	if err := sl.parse(backendService); err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *serverList) parse(backendService string) error {
	var endpoints []string
	for _, entry := range strings.Split(backendService, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(entry); err != nil {
			return apperrors.ErrInvalidServerEntry
		}
		endpoints = append(endpoints, entry)
	}

	if len(endpoints) == 0 {
		return apperrors.ErrServerListEmpty
	}

	s.endpoints = endpoints
	return nil
}

// refreshDNS resolves the first configured endpoint's hostname to every
// address the resolver returns and replaces the entire in-memory server
// list with one entry per resolved address, each on the first endpoint's
// port.
func (s *serverList) refreshDNS(ctx context.Context, resolver *net.Resolver) error {
	if len(s.endpoints) == 0 {
		return apperrors.ErrServerListEmpty
	}

	host, port, err := net.SplitHostPort(s.endpoints[0])
	if err != nil {
		return apperrors.ErrInvalidServerEntry
	}

	addrs, err := resolver.LookupHost(ctx, host)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return apperrors.ErrServerListEmpty
	}

	resolved := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		resolved = append(resolved, net.JoinHostPort(addr, port))
	}

	s.endpoints = resolved
	return nil
}

func (s *serverList) len() int {
	return len(s.endpoints)
}

func (s *serverList) at(i int) string {
	return s.endpoints[i]
}
