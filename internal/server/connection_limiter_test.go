package server

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionLimits_RateLimit(t *testing.T) {
	limits := newConnectionLimits(100, 100, 1, 2)

	for i := 0; i < 2; i++ {
		ok, _ := limits.acquire("1.2.3.4")
		assert.True(t, ok)
	}

	ok, reason := limits.acquire("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, limitReasonRate, reason)

	// Another IP has its own bucket.
	ok, _ = limits.acquire("5.6.7.8")
	assert.True(t, ok)
}

func TestConnectionLimits_PerIPLimit(t *testing.T) {
	limits := newConnectionLimits(100, 2, 1000, 1000)

	ok, _ := limits.acquire("1.2.3.4")
	assert.True(t, ok)
	ok, _ = limits.acquire("1.2.3.4")
	assert.True(t, ok)

	ok, reason := limits.acquire("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, limitReasonPerIP, reason)

	// A rejected acquire must not leak a global slot.
	assert.Equal(t, int64(2), limits.globalCurrent.Load())

	limits.release("1.2.3.4")
	ok, _ = limits.acquire("1.2.3.4")
	assert.True(t, ok)
}

func TestConnectionLimits_GlobalLimit(t *testing.T) {
	limits := newConnectionLimits(3, 100, 1000, 1000)

	for i := 0; i < 3; i++ {
		ok, _ := limits.acquire(fmt.Sprintf("10.0.0.%d", i))
		assert.True(t, ok)
	}

	ok, reason := limits.acquire("10.0.0.9")
	assert.False(t, ok)
	assert.Equal(t, limitReasonGlobal, reason)

	limits.release("10.0.0.0")
	ok, _ = limits.acquire("10.0.0.9")
	assert.True(t, ok)
}

func TestConnectionLimits_ReleaseCleansUpIPEntry(t *testing.T) {
	limits := newConnectionLimits(100, 10, 1000, 1000)

	limits.acquire("1.2.3.4")
	limits.release("1.2.3.4")

	limits.mu.Lock()
	_, exists := limits.perIP["1.2.3.4"]
	limits.mu.Unlock()
	assert.False(t, exists)
	assert.Equal(t, int64(0), limits.globalCurrent.Load())
}
