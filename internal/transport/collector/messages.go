// Package collector implements the wire protocol spoken with the remote
// collector's ConfigurationDiscoveryService, without generated protobuf
// bindings: messages are plain JSON-tagged structs carried over a real
// google.golang.org/grpc transport via a hand-built method path and a
// small JSON codec (see service_desc.go).
package collector

// KeyValue is a single key/value pair as carried on the wire.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WireCommand is one command as delivered in a Commands batch. Decoding
// moves the reserved SerialNumber key out of Args into the command's
// serial; the reserved UUID key stays in Args, and the executor skips it
// when diffing. Every other pair is a configuration entry.
type WireCommand struct {
	Command string     `json:"command"`
	Args    []KeyValue `json:"args"`
}

// CommandBatch is the response to FetchConfigurations.
type CommandBatch struct {
	Commands []WireCommand `json:"commands"`
}

// SyncRequest is the outgoing ConfigurationSyncRequest.
type SyncRequest struct {
	Service string `json:"service"`
	UUID    string `json:"uuid,omitempty"`
}

// Reserved argument keys for ConfigurationDiscoveryCommand.
const (
	ArgSerialNumber = "SerialNumber"
	ArgUUID         = "UUID"

	CommandConfigurationDiscovery = "ConfigurationDiscoveryCommand"
)

func (w WireCommand) arg(key string) (string, bool) {
	for _, kv := range w.Args {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Serial returns the reserved SerialNumber argument, if present.
func (w WireCommand) Serial() (string, bool) {
	return w.arg(ArgSerialNumber)
}
