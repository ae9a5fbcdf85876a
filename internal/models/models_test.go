package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	staleAge := 30 * time.Minute

	tests := []struct {
		name   string
		status string
		age    time.Duration
		want   string
	}{
		{"fresh pending stays pending", OrderStatusPending, 5 * time.Minute, OrderStatusPending},
		{"pending at the boundary stays pending", OrderStatusPending, staleAge, OrderStatusPending},
		{"stale pending shows cancelled", OrderStatusPending, 31 * time.Minute, OrderStatusCancelled},
		{"old paid order is untouched", OrderStatusPaid, 2 * time.Hour, OrderStatusPaid},
		{"old shipped order is untouched", OrderStatusShipped, 48 * time.Hour, OrderStatusShipped},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := Order{Status: tt.status, CreatedAt: now.Add(-tt.age)}
			assert.Equal(t, tt.want, o.EffectiveStatus(staleAge, now))
		})
	}
}

func TestEffectiveStatus_DisabledWhenZero(t *testing.T) {
	t.Parallel()

	o := Order{Status: OrderStatusPending, CreatedAt: time.Now().Add(-24 * time.Hour)}
	assert.Equal(t, OrderStatusPending, o.EffectiveStatus(0, time.Now()))
}
