package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParty(name string) Party {
	return Party{
		Name:    name,
		Address: "12 Rue des Orangers, Casablanca",
		ICE:     "001234567000089",
	}
}

func testInvoice(t *testing.T) *Invoice {
	t.Helper()
	computed, totals, err := ComputeTotals([]LineItem{line("REF-1", 2, 100, 20)})
	require.NoError(t, err)
	inv, err := NewInvoice(
		"INV-20250131-001",
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		testParty("BUILDIUM S.A.R.L"),
		testParty("ACME Maroc"),
		computed,
		totals,
	)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		inv := testInvoice(t)
		assert.Equal(t, StatusPending, inv.Status)
		assert.Equal(t, ArtifactStored, inv.ArtifactState)
		assert.Empty(t, inv.ArtifactRef)
		assert.NotEqual(t, "", inv.ID.String())
		for _, l := range inv.Lines {
			assert.Equal(t, inv.ID, l.InvoiceID)
		}
	})

	t.Run("rejects malformed number", func(t *testing.T) {
		computed, totals, err := ComputeTotals([]LineItem{line("REF-1", 1, 10, 0)})
		require.NoError(t, err)
		_, err = NewInvoice("FAC-001", time.Now(), testParty("A"), testParty("B"), computed, totals)
		assert.Error(t, err)
	})

	t.Run("rejects zero issue date", func(t *testing.T) {
		computed, totals, err := ComputeTotals([]LineItem{line("REF-1", 1, 10, 0)})
		require.NoError(t, err)
		_, err = NewInvoice("INV-20250131-001", time.Time{}, testParty("A"), testParty("B"), computed, totals)
		assert.Error(t, err)
	})

	t.Run("rejects invalid counterparty", func(t *testing.T) {
		computed, totals, err := ComputeTotals([]LineItem{line("REF-1", 1, 10, 0)})
		require.NoError(t, err)
		_, err = NewInvoice("INV-20250131-001", time.Now(), testParty("A"), Party{}, computed, totals)
		assert.Error(t, err)
	})

	t.Run("rejects empty lines", func(t *testing.T) {
		_, err := NewInvoice("INV-20250131-001", time.Now(), testParty("A"), testParty("B"), nil, Totals{})
		assert.Error(t, err)
	})
}

func TestInvoiceChangeStatus(t *testing.T) {
	inv := testInvoice(t)

	require.NoError(t, inv.ChangeStatus(StatusResolved))
	assert.Equal(t, StatusResolved, inv.Status)

	require.NoError(t, inv.ChangeStatus(StatusNotResolved))
	assert.Equal(t, StatusNotResolved, inv.Status)

	err := inv.ChangeStatus(Status("paid"))
	assert.Error(t, err)
	assert.Equal(t, StatusNotResolved, inv.Status)
}

func TestInvoiceArtifactLifecycle(t *testing.T) {
	inv := testInvoice(t)

	inv.MarkRenderFailed()
	assert.Equal(t, ArtifactRenderFailed, inv.ArtifactState)
	assert.False(t, inv.HasArtifact())

	inv.SetArtifact("pdfs/INV-20250131-001.pdf")
	assert.Equal(t, ArtifactStored, inv.ArtifactState)
	assert.Equal(t, "pdfs/INV-20250131-001.pdf", inv.ArtifactRef)
	assert.True(t, inv.HasArtifact())

	assert.Equal(t, "INV-20250131-001.pdf", inv.ArtifactFilename())
}
