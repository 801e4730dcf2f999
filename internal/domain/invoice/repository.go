package invoice

import (
	"context"
	"time"

	"github.com/buildium/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter defines filtering options for invoice queries
type Filter struct {
	shared.Filter
	Status    *Status          // filter by settlement status
	DateFrom  *time.Time       // creation date range start
	DateTo    *time.Time       // creation date range end
	MinAmount *decimal.Decimal // minimum total incl. tax
	MaxAmount *decimal.Decimal // maximum total incl. tax
}

// Statistics aggregates invoice counts and revenue per status
type Statistics struct {
	Total       int64           `json:"total"`
	Pending     int64           `json:"pending"`
	Resolved    int64           `json:"resolved"`
	NotResolved int64           `json:"not_resolved"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Repository defines the interface for invoice persistence
type Repository interface {
	// Create persists a new invoice with its lines.
	// Returns shared.ErrAlreadyExists when the invoice number is taken.
	Create(ctx context.Context, inv *Invoice) error

	// FindByID finds an invoice by ID, including its lines in order
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its allocated number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindAll finds invoices matching the filter, with pagination
	FindAll(ctx context.Context, filter Filter) ([]Invoice, int64, error)

	// UpdateStatus transitions the settlement status of an invoice
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// UpdateArtifact records the artifact reference and state after a
	// deferred render succeeded or failed
	UpdateArtifact(ctx context.Context, id uuid.UUID, state ArtifactState, ref string) error

	// Statistics aggregates counts and total revenue across all invoices
	Statistics(ctx context.Context) (*Statistics, error)
}

// SequenceAllocator hands out per-day sequence values. Implementations
// must be atomic: concurrent calls for the same day never observe the
// same value, and values for a day form a contiguous ascending run
// starting at 1.
type SequenceAllocator interface {
	// Next atomically increments and returns the counter for the
	// calendar day of the given date
	Next(ctx context.Context, day time.Time) (int, error)
}

// ArtifactStorage stores rendered document bytes under the invoice's
// filename convention and returns a stable reference for later reads.
type ArtifactStorage interface {
	// Put stores the artifact and returns its stable reference
	Put(ctx context.Context, filename string, data []byte) (string, error)

	// Get retrieves previously stored artifact bytes by reference.
	// Returns shared.ErrNotFound when the reference cannot be served
	// (e.g. non-durable local disk was wiped).
	Get(ctx context.Context, ref string) ([]byte, error)
}
