package channel

import "google.golang.org/grpc"

// managedChannel is the owned handle to an active transport connection.
// At most one exists at any moment; it is shut down on failure detection
// or on core teardown.
type managedChannel struct {
	target string
	conn   *grpc.ClientConn
}

func (m *managedChannel) close() {
	if m == nil || m.conn == nil {
		return
	}
	_ = m.conn.Close()
}
