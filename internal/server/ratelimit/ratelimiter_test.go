package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter()
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	assert.True(t, l.Allow("10.0.0.1", 2, time.Minute))
	assert.True(t, l.Allow("10.0.0.1", 2, time.Minute))
	assert.False(t, l.Allow("10.0.0.1", 2, time.Minute))
	assert.True(t, l.Allow("10.0.0.2", 2, time.Minute), "keys are tracked independently")

	current = current.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("10.0.0.1", 2, time.Minute), "a new window starts after expiry")
}

func TestLimiter_Cleanup(t *testing.T) {
	l := NewLimiter()
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	l.Allow("old", 5, time.Minute)
	current = current.Add(3 * time.Minute)
	l.Allow("fresh", 5, time.Minute)
	assert.Equal(t, 2, l.Len())

	current = current.Add(4 * time.Minute)
	l.cleanup()
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter()
	l.StartCleanup(time.Millisecond)
	l.Stop()
	l.Stop()
}
