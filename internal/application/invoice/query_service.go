package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/domain/shared"
)

// ArtifactCache is an optional byte cache in front of artifact
// storage. Implemented by the cache package; a nil cache disables it.
type ArtifactCache interface {
	Get(ctx context.Context, ref string) ([]byte, bool)
	Set(ctx context.Context, ref string, data []byte)
	Invalidate(ctx context.Context, ref string)
}

// QueryService serves reads: listing, retrieval, status transitions,
// statistics and artifact downloads with on-demand regeneration.
type QueryService struct {
	repo     invoice.Repository
	renderer DocumentRenderer
	storage  invoice.ArtifactStorage
	cache    ArtifactCache
	logger   *zap.Logger
}

// NewQueryService creates a new QueryService. cache may be nil.
func NewQueryService(
	repo invoice.Repository,
	renderer DocumentRenderer,
	storage invoice.ArtifactStorage,
	cache ArtifactCache,
	logger *zap.Logger,
) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		repo:     repo,
		renderer: renderer,
		storage:  storage,
		cache:    cache,
		logger:   logger,
	}
}

// List returns invoices matching the filter and the unpaged total.
func (s *QueryService) List(ctx context.Context, filter invoice.Filter) ([]invoice.Invoice, int64, error) {
	return s.repo.FindAll(ctx, filter)
}

// Get returns one invoice by ID with its lines in order.
func (s *QueryService) Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByNumber returns one invoice by its allocated number.
func (s *QueryService) GetByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return s.repo.FindByNumber(ctx, number)
}

// ChangeStatus transitions the settlement status of an invoice.
func (s *QueryService) ChangeStatus(ctx context.Context, id uuid.UUID, status invoice.Status) (*invoice.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return inv, nil
}

// Statistics aggregates counts and revenue across all invoices.
func (s *QueryService) Statistics(ctx context.Context) (*invoice.Statistics, error) {
	return s.repo.Statistics(ctx)
}

// Artifact returns the rendered document bytes for an invoice,
// regenerating from the stored data when the artifact is missing or
// the original render failed. Regeneration is idempotent: the layout
// is a pure function of the invoice record, so the bytes match what
// the initial render would have produced.
func (s *QueryService) Artifact(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if inv.HasArtifact() {
		if s.cache != nil {
			if data, ok := s.cache.Get(ctx, inv.ArtifactRef); ok {
				return data, inv.ArtifactFilename(), nil
			}
		}

		data, err := s.storage.Get(ctx, inv.ArtifactRef)
		if err == nil {
			if s.cache != nil {
				s.cache.Set(ctx, inv.ArtifactRef, data)
			}
			return data, inv.ArtifactFilename(), nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, "", err
		}
		s.logger.Warn("Stored artifact unavailable, regenerating",
			zap.String("number", inv.Number),
			zap.String("ref", inv.ArtifactRef))
	}

	return s.regenerate(ctx, inv)
}

// regenerate re-renders the document, stores it and clears the
// render_failed marker.
func (s *QueryService) regenerate(ctx context.Context, inv *invoice.Invoice) ([]byte, string, error) {
	data, err := s.renderer.Render(inv)
	if err != nil {
		return nil, "", fmt.Errorf("regenerating invoice %s: %w", inv.Number, err)
	}

	ref, err := s.storage.Put(ctx, inv.ArtifactFilename(), data)
	if err != nil {
		return nil, "", fmt.Errorf("storing regenerated invoice %s: %w", inv.Number, err)
	}

	if err := s.repo.UpdateArtifact(ctx, inv.ID, invoice.ArtifactStored, ref); err != nil {
		return nil, "", err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, ref)
		s.cache.Set(ctx, ref, data)
	}

	s.logger.Info("Invoice artifact regenerated",
		zap.String("number", inv.Number),
		zap.String("ref", ref))
	return data, inv.ArtifactFilename(), nil
}
