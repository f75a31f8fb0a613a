package storage

import (
	"context"

	"github.com/shopspring/decimal"
)

// Storage defines how per-user running totals are read and persisted.
// Unknown usernames read as zero; records are created on first login
// and never deleted.
type Storage interface {
	// GetTotal returns the running total for username, zero if unseen.
	GetTotal(ctx context.Context, username string) (decimal.Decimal, error)
	// Add increments the total for username by amount, persists, and
	// returns the new total. The record is created if absent.
	Add(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error)
	// Reset sets the total for username to zero and persists.
	Reset(ctx context.Context, username string) (decimal.Decimal, error)
	// Ensure creates a zero record for username if one does not exist
	// and returns the current total. Called on login.
	Ensure(ctx context.Context, username string) (decimal.Decimal, error)
	// Totals returns the full username -> total mapping.
	Totals(ctx context.Context) (map[string]decimal.Decimal, error)
}
