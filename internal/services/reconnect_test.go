package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectPolicyDelay(t *testing.T) {
	policy := DefaultReconnectPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{7, 60 * time.Second},
		{8, 60 * time.Second},
		{9, 60 * time.Second},
		{10, 60 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, policy.Delay(tt.attempt), "delay for attempt %d", tt.attempt)
	}
}

func TestReconnectPolicyAttemptBudget(t *testing.T) {
	policy := DefaultReconnectPolicy()

	for n := 0; n < 10; n++ {
		assert.True(t, policy.ShouldRetry(n), "attempt %d should be admitted", n)
	}
	assert.False(t, policy.ShouldRetry(10))
	assert.False(t, policy.ShouldRetry(11))
}

func TestReconnectPolicyDelayClamps(t *testing.T) {
	policy := DefaultReconnectPolicy()

	assert.Equal(t, policy.Cap, policy.Delay(31))
	assert.Equal(t, policy.Cap, policy.Delay(63))
	assert.Equal(t, policy.Base, policy.Delay(-1))
}
