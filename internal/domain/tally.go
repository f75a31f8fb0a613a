package domain

import "github.com/shopspring/decimal"

// Tally Model - one running total per username
type Tally struct {
	ID        uint            `gorm:"primaryKey" json:"-"`                      // Primary key (MySQL backend only)
	Username  string          `gorm:"uniqueIndex;not null" json:"username"`     // Unique username, the record key
	Total     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"` // Running total, exact decimal
	UpdatedAt int64           `gorm:"autoUpdateTime:milli" json:"updated_at"`   // Timestamp of last mutation in milliseconds
}
