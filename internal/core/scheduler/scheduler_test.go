package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentcore/internal/config"
	"agentcore/internal/config/logger"
)

func testScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s := NewScheduler(config.DefaultConfig(), &logger.NoopLogger{})
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	require.NoError(t, s.Start(context.Background()))
	return s
}

type countingExecutor struct {
	mu    sync.Mutex
	calls int
	last  Command
}

func (c *countingExecutor) Execute(cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.last = cmd
	return nil
}

func (c *countingExecutor) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestScheduler_DuplicateSerialWithinBatchDroppedAtReceive(t *testing.T) {
	s := testScheduler(t)
	exec := &countingExecutor{}
	s.RegisterExecutor("noop", exec)

	s.Receive([]Command{
		{Kind: "noop", Serial: "sX"},
		{Kind: "noop", Serial: "sX"},
	})

	require.Eventually(t, func() bool { return exec.count() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, exec.count())
}

func TestScheduler_DuplicateAcrossBatchesNotReExecuted(t *testing.T) {
	s := testScheduler(t)
	exec := &countingExecutor{}
	s.RegisterExecutor("noop", exec)

	s.Receive([]Command{{Kind: "noop", Serial: "sY"}})
	require.Eventually(t, func() bool { return exec.count() == 1 }, time.Second, time.Millisecond)

	s.Receive([]Command{{Kind: "noop", Serial: "sY"}})
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, exec.count())
}

func TestScheduler_QueueOverflowDropsWithoutBlocking(t *testing.T) {
	s := NewScheduler(config.DefaultConfig(), &logger.NoopLogger{})
	// do not start the dispatch worker: nothing drains the queue.

	for i := 0; i < config.CommandQueueCapacity+10; i++ {
		s.Receive([]Command{{Kind: "noop", Serial: genSerial(i)}})
	}

	assert.LessOrEqual(t, s.QueueDepth(), config.CommandQueueCapacity)
}

func TestScheduler_UnregisteredExecutorIsLoggedAndSkipped(t *testing.T) {
	s := testScheduler(t)

	assert.NotPanics(t, func() {
		s.Receive([]Command{{Kind: "missing", Serial: "s1"}})
		time.Sleep(20 * time.Millisecond)
	})
}

func genSerial(i int) string {
	return fmt.Sprintf("serial-%d", i)
}
