package channel

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const (
	headerServiceName  = "x-agent-service"
	headerInstanceName = "x-agent-instance"
	headerAuth         = "authorization"
)

// identityInterceptor attaches the agent identity header to every outgoing
// unary call, first in the decorator chain.
func identityInterceptor(serviceName, instanceName string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx,
			headerServiceName, serviceName,
			headerInstanceName, instanceName,
		)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// perRPCAuth implements credentials.PerRPCCredentials, the authentication
// decorator: an opaque bearer token attached to every outgoing call.
type perRPCAuth struct {
	token      string
	requireTLS bool
}

func (a perRPCAuth) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	if a.token == "" {
		return nil, nil
	}
	return map[string]string{headerAuth: "Bearer " + a.token}, nil
}

func (a perRPCAuth) RequireTransportSecurity() bool {
	return a.requireTLS
}

// dialOptions assembles the decorator chain in registration order: identity
// header, authentication header, then transport-mode (plaintext or TLS).
func dialOptions(serviceName, instanceName, authToken string, tlsEnabled bool) []grpc.DialOption {
	opts := []grpc.DialOption{
		grpc.WithChainUnaryInterceptor(identityInterceptor(serviceName, instanceName)),
	}

	if authToken != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(perRPCAuth{token: authToken, requireTLS: tlsEnabled}))
	}

	if tlsEnabled {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(nil)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	return opts
}
