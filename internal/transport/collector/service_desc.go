package collector

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is registered as a content-subtype so ClientConn.Invoke can
// use a real gRPC transport (framing, HTTP/2, TLS, status codes, deadlines)
// without generated protobuf bindings — no protoc is run anywhere in this
// module.
const jsonCodecName = "json"

// jsonCodec implements encoding.Codec by delegating to encoding/json. It is
// registered once at package init; FetchConfigurations selects it on each
// call with grpc.CallContentSubtype, which sends "application/grpc+json".
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// serviceName and fetchConfigsMethod identify the RPC this package hand-dials: no
// .proto file exists in this module, so the path is constructed directly
// in the same "/package.Service/Method" shape protoc would generate.
const (
	serviceName        = "agent.collector.ConfigurationDiscoveryService"
	fetchConfigsMethod = "/" + serviceName + "/FetchConfigurations"
)
