package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/domain/shared"
)

func storedInvoice(t *testing.T) *invoice.Invoice {
	t.Helper()
	lines, totals, err := invoice.ComputeTotals([]invoice.LineItem{{
		Reference:     "REF-1",
		Designation:   "Prestation",
		Quantity:      decimal.NewFromInt(1),
		Unit:          "u",
		UnitPriceExcl: decimal.NewFromInt(100),
		TaxRate:       decimal.NewFromInt(20),
	}})
	require.NoError(t, err)

	inv, err := invoice.NewInvoice(
		"INV-20250131-001",
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		testIssuer,
		invoice.Party{Name: "ACME Maroc", Address: "Rabat"},
		lines, totals,
	)
	require.NoError(t, err)
	inv.SetArtifact("INV-20250131-001.pdf")
	return inv
}

func TestQueryService_ChangeStatus(t *testing.T) {
	t.Run("transitions status", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		service := NewQueryService(repo, new(MockRenderer), new(MockArtifactStorage), nil, nil)

		inv := storedInvoice(t)
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		repo.On("UpdateStatus", mock.Anything, inv.ID, invoice.StatusResolved).Return(nil).Once()

		updated, err := service.ChangeStatus(context.Background(), inv.ID, invoice.StatusResolved)

		require.NoError(t, err)
		assert.Equal(t, invoice.StatusResolved, updated.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		service := NewQueryService(repo, new(MockRenderer), new(MockArtifactStorage), nil, nil)

		inv := storedInvoice(t)
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()

		_, err := service.ChangeStatus(context.Background(), inv.ID, invoice.Status("paid"))

		assert.Error(t, err)
		repo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		service := NewQueryService(repo, new(MockRenderer), new(MockArtifactStorage), nil, nil)

		inv := storedInvoice(t)
		repo.On("FindByID", mock.Anything, inv.ID).Return(nil, shared.ErrNotFound).Once()

		_, err := service.ChangeStatus(context.Background(), inv.ID, invoice.StatusResolved)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestQueryService_Artifact(t *testing.T) {
	t.Run("serves stored artifact from storage", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		storage := new(MockArtifactStorage)
		service := NewQueryService(repo, new(MockRenderer), storage, nil, nil)

		inv := storedInvoice(t)
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		storage.On("Get", mock.Anything, inv.ArtifactRef).Return([]byte("%PDF stored"), nil).Once()

		data, filename, err := service.Artifact(context.Background(), inv.ID)

		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF stored"), data)
		assert.Equal(t, "INV-20250131-001.pdf", filename)
		storage.AssertExpectations(t)
	})

	t.Run("serves from cache without touching storage", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		storage := new(MockArtifactStorage)
		cache := new(MockArtifactCache)
		service := NewQueryService(repo, new(MockRenderer), storage, cache, nil)

		inv := storedInvoice(t)
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		cache.On("Get", mock.Anything, inv.ArtifactRef).Return([]byte("%PDF cached"), true).Once()

		data, _, err := service.Artifact(context.Background(), inv.ID)

		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF cached"), data)
		storage.AssertNotCalled(t, "Get")
	})

	t.Run("regenerates when stored artifact is gone", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		storage := new(MockArtifactStorage)
		renderer := new(MockRenderer)
		service := NewQueryService(repo, renderer, storage, nil, nil)

		inv := storedInvoice(t)
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		storage.On("Get", mock.Anything, inv.ArtifactRef).Return(nil, shared.ErrNotFound).Once()
		renderer.On("Render", inv).Return([]byte("%PDF regen"), nil).Once()
		storage.On("Put", mock.Anything, "INV-20250131-001.pdf", []byte("%PDF regen")).
			Return("INV-20250131-001.pdf", nil).Once()
		repo.On("UpdateArtifact", mock.Anything, inv.ID, invoice.ArtifactStored, "INV-20250131-001.pdf").
			Return(nil).Once()

		data, _, err := service.Artifact(context.Background(), inv.ID)

		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF regen"), data)
		repo.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("render_failed invoice regenerates without probing storage", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		storage := new(MockArtifactStorage)
		renderer := new(MockRenderer)
		service := NewQueryService(repo, renderer, storage, nil, nil)

		inv := storedInvoice(t)
		inv.MarkRenderFailed()
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		renderer.On("Render", inv).Return([]byte("%PDF regen"), nil).Once()
		storage.On("Put", mock.Anything, mock.Anything, mock.Anything).
			Return("INV-20250131-001.pdf", nil).Once()
		repo.On("UpdateArtifact", mock.Anything, inv.ID, invoice.ArtifactStored, "INV-20250131-001.pdf").
			Return(nil).Once()

		_, _, err := service.Artifact(context.Background(), inv.ID)

		require.NoError(t, err)
		storage.AssertNotCalled(t, "Get")
	})

	t.Run("regeneration render failure surfaces error", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		storage := new(MockArtifactStorage)
		renderer := new(MockRenderer)
		service := NewQueryService(repo, renderer, storage, nil, nil)

		inv := storedInvoice(t)
		inv.MarkRenderFailed()
		repo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		renderer.On("Render", inv).Return(nil, assert.AnError).Once()

		_, _, err := service.Artifact(context.Background(), inv.ID)

		assert.Error(t, err)
		repo.AssertNotCalled(t, "UpdateArtifact")
	})
}

func TestQueryService_Statistics(t *testing.T) {
	repo := new(MockInvoiceRepository)
	service := NewQueryService(repo, new(MockRenderer), new(MockArtifactStorage), nil, nil)

	expected := &invoice.Statistics{Total: 3, Pending: 1, Resolved: 2}
	repo.On("Statistics", mock.Anything).Return(expected, nil).Once()

	stats, err := service.Statistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, expected, stats)
}
