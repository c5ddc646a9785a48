package collector

import (
	"agentcore/internal/apperrors"
	"agentcore/internal/core/scheduler"
)

// knownKinds is the registry of command kinds this core understands. A
// batch may carry kinds the core doesn't recognize yet; those are rejected
// here rather than reaching the scheduler at all.
var knownKinds = map[string]bool{
	CommandConfigurationDiscovery: true,
}

// DecodeBatch converts a wire CommandBatch into scheduler.Command values.
// Unrecognized kinds are logged by the caller and skipped; the rest of the
// batch proceeds. The returned skipped count lets the caller log how many
// commands were rejected at the protocol boundary.
func DecodeBatch(batch CommandBatch) (commands []scheduler.Command, skipped int) {
	for _, wc := range batch.Commands {
		cmd, err := decodeOne(wc)
		if err != nil {
			skipped++
			continue
		}
		commands = append(commands, cmd)
	}
	return commands, skipped
}

func decodeOne(wc WireCommand) (scheduler.Command, error) {
	if !knownKinds[wc.Command] {
		return scheduler.Command{}, apperrors.ErrUnknownCommandKind
	}

	serial, _ := wc.Serial()

	args := make([]scheduler.Arg, 0, len(wc.Args))
	for _, kv := range wc.Args {
		if kv.Key == ArgSerialNumber {
			continue
		}
		args = append(args, scheduler.Arg{Key: kv.Key, Value: kv.Value})
	}

	return scheduler.Command{
		Kind:   wc.Command,
		Serial: serial,
		Args:   args,
	}, nil
}
