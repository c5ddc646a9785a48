package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialCache_ContainsAfterAdd(t *testing.T) {
	c := newSerialCache(4)
	assert.False(t, c.contains("s1"))

	c.add("s1")
	assert.True(t, c.contains("s1"))
}

func TestSerialCache_FIFOEviction(t *testing.T) {
	c := newSerialCache(2)
	c.add("s1")
	c.add("s2")
	assert.True(t, c.contains("s1"))

	c.add("s3")

	assert.False(t, c.contains("s1"), "oldest entry must be evicted first")
	assert.True(t, c.contains("s2"))
	assert.True(t, c.contains("s3"))
}

func TestSerialCache_CapacityBound(t *testing.T) {
	c := newSerialCache(64)
	for i := 0; i < 200; i++ {
		c.add(fmt.Sprintf("serial-%d", i))
	}

	count := 0
	for i := 0; i < 200; i++ {
		if c.contains(fmt.Sprintf("serial-%d", i)) {
			count++
		}
	}
	assert.Equal(t, 64, count)
}

func TestSerialCache_ReAddIsNoOp(t *testing.T) {
	c := newSerialCache(2)
	c.add("s1")
	c.add("s2")
	c.add("s1")
	c.add("s3")

	assert.False(t, c.contains("s1"), "re-adding must not refresh insertion order")
	assert.True(t, c.contains("s2"))
	assert.True(t, c.contains("s3"))
}
