package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeBatch_SkipsUnknownKind(t *testing.T) {
	batch := CommandBatch{Commands: []WireCommand{
		{Command: "SomeFutureCommand", Args: []KeyValue{{Key: "x", Value: "1"}}},
		{Command: CommandConfigurationDiscovery, Args: []KeyValue{
			{Key: ArgSerialNumber, Value: "s1"},
			{Key: ArgUUID, Value: "u1"},
			{Key: "feature.flag", Value: "on"},
		}},
	}}

	commands, skipped := DecodeBatch(batch)

	assert.Equal(t, 1, skipped)
	if assert.Len(t, commands, 1) {
		assert.Equal(t, CommandConfigurationDiscovery, commands[0].Kind)
		assert.Equal(t, "s1", commands[0].Serial)

		uuid, ok := commands[0].Get(ArgUUID)
		assert.True(t, ok)
		assert.Equal(t, "u1", uuid)

		flag, ok := commands[0].Get("feature.flag")
		assert.True(t, ok)
		assert.Equal(t, "on", flag)

		_, hasSerialArg := commands[0].Get(ArgSerialNumber)
		assert.False(t, hasSerialArg)
	}
}

func TestWireCommand_SerialReturnsReservedArg(t *testing.T) {
	wc := WireCommand{Args: []KeyValue{
		{Key: ArgSerialNumber, Value: "s1"},
		{Key: "k1", Value: "v1"},
	}}

	serial, ok := wc.Serial()
	assert.True(t, ok)
	assert.Equal(t, "s1", serial)
}
