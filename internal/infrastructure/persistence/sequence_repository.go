package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/buildium/backend/internal/domain/invoice"
)

// Sequence is the per-day counter row backing invoice number allocation.
type Sequence struct {
	Day   string `gorm:"type:varchar(8);primary_key"`
	Value int    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Sequence) TableName() string {
	return "invoice_sequences"
}

// GormSequenceAllocator implements invoice.SequenceAllocator on a
// single upserted counter row per day. The increment happens inside
// one statement, so concurrent allocations for the same day serialize
// on the row lock and every caller observes a distinct value.
type GormSequenceAllocator struct {
	db *gorm.DB
}

var _ invoice.SequenceAllocator = (*GormSequenceAllocator)(nil)

// NewGormSequenceAllocator creates a new GormSequenceAllocator
func NewGormSequenceAllocator(db *gorm.DB) *GormSequenceAllocator {
	return &GormSequenceAllocator{db: db}
}

// Next atomically increments and returns the counter for the calendar
// day of the given date. The first allocation of a day returns 1.
func (a *GormSequenceAllocator) Next(ctx context.Context, day time.Time) (int, error) {
	var value int
	err := a.db.WithContext(ctx).Raw(`
		INSERT INTO invoice_sequences (day, value)
		VALUES (?, 1)
		ON CONFLICT (day) DO UPDATE SET value = invoice_sequences.value + 1
		RETURNING value`, invoice.DayKey(day)).
		Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
