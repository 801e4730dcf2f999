// Package invoice orchestrates invoice issuance: totals computation,
// number allocation, document rendering and persistence.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/domain/shared"
)

// allocationRetries bounds how many numbers issuance will try before
// giving up when every allocated number races an existing row.
const allocationRetries = 5

// DocumentRenderer renders a stored invoice into its PDF artifact.
// Implemented by the pdf package.
type DocumentRenderer interface {
	Render(inv *invoice.Invoice) ([]byte, error)
}

// IssuanceService drives the issuance pipeline. The pipeline order is
// fixed: validate, compute totals, allocate a number, render, store
// the artifact, persist. A failed render or artifact store does not
// abort persistence; the invoice is saved with the render_failed
// marker and its document can be regenerated later. A store failure
// is still surfaced as ErrPersistenceFailure after the record exists.
type IssuanceService struct {
	repo      invoice.Repository
	allocator invoice.SequenceAllocator
	renderer  DocumentRenderer
	storage   invoice.ArtifactStorage
	issuer    invoice.Party
	logger    *zap.Logger
}

// NewIssuanceService creates a new IssuanceService
func NewIssuanceService(
	repo invoice.Repository,
	allocator invoice.SequenceAllocator,
	renderer DocumentRenderer,
	storage invoice.ArtifactStorage,
	issuer invoice.Party,
	logger *zap.Logger,
) *IssuanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssuanceService{
		repo:      repo,
		allocator: allocator,
		renderer:  renderer,
		storage:   storage,
		issuer:    issuer,
		logger:    logger,
	}
}

// IssueRequest carries the caller-supplied issuance input. Amounts
// are never accepted; they are derived from the lines.
type IssueRequest struct {
	IssueDate    time.Time
	Counterparty invoice.Party
	Lines        []invoice.LineItem
}

// Issue runs the issuance pipeline and returns the persisted invoice.
func (s *IssuanceService) Issue(ctx context.Context, req IssueRequest) (*invoice.Invoice, error) {
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if err := req.Counterparty.Validate(); err != nil {
		return nil, err
	}

	lines, totals, err := invoice.ComputeTotals(req.Lines)
	if err != nil {
		return nil, err
	}

	// The sequence allocator is atomic, so two concurrent issuances
	// never see the same value. The unique index on the invoice
	// number is the second line of defense: if a persisted row still
	// collides, allocate a fresh number and try again, a bounded
	// number of times.
	for attempt := 0; attempt < allocationRetries; attempt++ {
		seq, err := s.allocator.Next(ctx, issueDate)
		if err != nil {
			return nil, fmt.Errorf("allocating invoice number: %w", err)
		}
		number := invoice.FormatNumber(issueDate, seq)

		inv, err := invoice.NewInvoice(number, issueDate, s.issuer, req.Counterparty, lines, totals)
		if err != nil {
			return nil, err
		}

		storeErr := s.renderAndStore(ctx, inv)

		if err := s.repo.Create(ctx, inv); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				s.logger.Warn("Invoice number collision, retrying",
					zap.String("number", number),
					zap.Int("attempt", attempt+1))
				continue
			}
			return nil, err
		}

		// The record is persisted with the render_failed marker, so
		// the consumed number stays diagnosable, but a lost artifact
		// must not report success.
		if storeErr != nil {
			return nil, storeErr
		}

		s.logger.Info("Invoice issued",
			zap.String("number", inv.Number),
			zap.String("id", inv.ID.String()),
			zap.String("total_incl", inv.Totals.TotalIncl.StringFixed(2)),
			zap.String("artifact_state", inv.ArtifactState.String()))
		return inv, nil
	}

	return nil, shared.ErrAllocationExhausted
}

// renderAndStore renders the document and stores the artifact. Both
// failure modes mark the invoice render_failed; a render failure only
// degrades (the document regenerates from stored data on demand), but
// a storage failure is returned so issuance can surface it.
func (s *IssuanceService) renderAndStore(ctx context.Context, inv *invoice.Invoice) error {
	data, err := s.renderer.Render(inv)
	if err != nil {
		s.logger.Error("Invoice render failed",
			zap.String("number", inv.Number), zap.Error(err))
		inv.MarkRenderFailed()
		return nil
	}

	ref, err := s.storage.Put(ctx, inv.ArtifactFilename(), data)
	if err != nil {
		s.logger.Error("Invoice artifact store failed",
			zap.String("number", inv.Number), zap.Error(err))
		inv.MarkRenderFailed()
		return fmt.Errorf("%w: %v", shared.ErrPersistenceFailure, err)
	}

	inv.SetArtifact(ref)
	return nil
}
