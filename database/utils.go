package database

import (
	"context"
	"time"
)

// Timeouts applied to store calls on top of the caller's context
const (
	// ShortTimeout for single document reads and writes
	ShortTimeout = 5 * time.Second

	// MediumTimeout for connecting and schema setup
	MediumTimeout = 10 * time.Second
)

// WithShortTimeout bounds ctx by ShortTimeout
func WithShortTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, ShortTimeout)
}

// WithMediumTimeout bounds ctx by MediumTimeout
func WithMediumTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, MediumTimeout)
}
