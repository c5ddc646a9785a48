package collector

import (
	"context"

	"google.golang.org/grpc"
)

// Client issues FetchConfigurations calls against a live channel. It holds
// no connection itself — callers pass the Channel Manager's current
// snapshot on every call, since the connection can be replaced out from
// under a long-lived client by reconnection.
type Client struct{}

// NewClient returns a stateless collector client.
func NewClient() *Client {
	return &Client{}
}

// FetchConfigurations issues the unary RPC described in the external
// interface: request carries the service name and, if present, the sync
// cursor; the response is a Commands batch. ctx should already carry the
// GRPC_UPSTREAM_TIMEOUT deadline.
func (c *Client) FetchConfigurations(ctx context.Context, conn *grpc.ClientConn, req SyncRequest) (CommandBatch, error) {
	var resp CommandBatch

	callOpts := []grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}
	if err := conn.Invoke(ctx, fetchConfigsMethod, &req, &resp, callOpts...); err != nil {
		return CommandBatch{}, err
	}

	return resp, nil
}
