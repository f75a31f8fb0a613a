package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zixindh/counter/internal/domain"
)

// Store persists totals in MySQL through GORM, one row per username.
// Selected with STORAGE_BACKEND=mysql; run cmd/migrate first.
type Store struct {
	db *gorm.DB
}

// New wraps an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetTotal returns the total for username, zero if no row exists.
func (s *Store) GetTotal(ctx context.Context, username string) (decimal.Decimal, error) {
	var tally domain.Tally
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&tally).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil // Unseen username reads as zero
	}
	if err != nil {
		return decimal.Zero, err
	}
	return tally.Total, nil
}

// Add increments username's total by amount inside a transaction,
// creating the row on first use, and returns the new total.
func (s *Store) Add(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	var tally domain.Tally
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Create the row with a zero total if it does not exist yet
		if err := tx.Where(domain.Tally{Username: username}).
			Attrs(domain.Tally{Total: decimal.Zero}).
			FirstOrCreate(&tally).Error; err != nil {
			return err
		}
		// Increment in the database so two devices cannot lose an add
		if err := tx.Model(&tally).Update("total", gorm.Expr("total + ?", amount)).Error; err != nil {
			return err
		}
		// Re-read the row for the updated total
		return tx.Where("username = ?", username).First(&tally).Error
	})
	if err != nil {
		return decimal.Zero, err
	}
	return tally.Total, nil
}

// Reset sets username's total to zero, creating the row if absent.
func (s *Store) Reset(ctx context.Context, username string) (decimal.Decimal, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tally domain.Tally
		if err := tx.Where(domain.Tally{Username: username}).
			Attrs(domain.Tally{Total: decimal.Zero}).
			FirstOrCreate(&tally).Error; err != nil {
			return err
		}
		return tx.Model(&tally).Update("total", decimal.Zero).Error
	})
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Zero, nil
}

// Ensure creates a zero row for username on first login and returns
// the current total.
func (s *Store) Ensure(ctx context.Context, username string) (decimal.Decimal, error) {
	var tally domain.Tally
	err := s.db.WithContext(ctx).Where(domain.Tally{Username: username}).
		Attrs(domain.Tally{Total: decimal.Zero}).
		FirstOrCreate(&tally).Error
	if err != nil {
		return decimal.Zero, err
	}
	return tally.Total, nil
}

// Totals returns the full username -> total mapping.
func (s *Store) Totals(ctx context.Context) (map[string]decimal.Decimal, error) {
	var tallies []domain.Tally
	if err := s.db.WithContext(ctx).Find(&tallies).Error; err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(tallies))
	for _, t := range tallies {
		out[t.Username] = t.Total
	}
	return out, nil
}
