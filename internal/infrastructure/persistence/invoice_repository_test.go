package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func invoiceRows(id uuid.UUID, number string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "number", "issue_date", "counterparty_name", "counterparty_address",
		"total_total_excl", "total_total_tax", "total_total_incl",
		"status", "artifact_state", "artifact_ref",
	}).AddRow(
		id, number, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), "ACME Maroc", "Casablanca",
		decimal.NewFromInt(200), decimal.NewFromInt(40), decimal.NewFromInt(240),
		"pending", "stored", "pdfs/"+number+".pdf",
	)
}

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("finds existing invoice with lines", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(invoiceRows(id, "INV-20250131-001"))
		mock.ExpectQuery(`SELECT \* FROM "invoice_lines" WHERE .*"invoice_id" .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "reference", "position"}).
				AddRow(uuid.New(), id, "REF-1", 0))

		inv, err := repo.FindByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, "INV-20250131-001", inv.Number)
		assert.Len(t, inv.Lines, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing invoice to ErrNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByID(context.Background(), id)

		assert.Nil(t, inv)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindByNumber(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(db)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE number = \$1 ORDER BY .* LIMIT .*`).
		WithArgs("INV-20250131-002", 1).
		WillReturnRows(invoiceRows(id, "INV-20250131-002"))
	mock.ExpectQuery(`SELECT \* FROM "invoice_lines" WHERE .*"invoice_id" .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id"}))

	inv, err := repo.FindByNumber(context.Background(), "INV-20250131-002")

	require.NoError(t, err)
	assert.Equal(t, id, inv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_UpdateStatus(t *testing.T) {
	t.Run("updates existing invoice", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		id := uuid.New()
		mock.ExpectExec(`UPDATE "invoices" SET .*"status".*WHERE id = .*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), id, invoice.StatusResolved)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no row matches", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		mock.ExpectExec(`UPDATE "invoices" SET .*"status".*WHERE id = .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), uuid.New(), invoice.StatusResolved)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_UpdateArtifact(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(db)

	mock.ExpectExec(`UPDATE "invoices" SET .*"artifact_ref".*"artifact_state".*WHERE id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateArtifact(context.Background(), uuid.New(), invoice.ArtifactStored, "pdfs/INV-20250131-001.pdf")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_Statistics(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total,.*FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "resolved", "not_resolved", "total_amount"}).
			AddRow(10, 4, 5, 1, decimal.RequireFromString("1234.56")))

	stats, err := repo.Statistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.Total)
	assert.Equal(t, int64(4), stats.Pending)
	assert.Equal(t, int64(5), stats.Resolved)
	assert.Equal(t, int64(1), stats.NotResolved)
	assert.True(t, stats.TotalAmount.Equal(decimal.RequireFromString("1234.56")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		orderBy  string
		orderDir string
		expected string
	}{
		{"date", "asc", "issue_date ASC"},
		{"amount", "desc", "total_total_incl DESC"},
		{"client", "", "counterparty_name DESC"},
		{"number", "ASC", "number ASC"},
		{"", "", "created_at DESC"},
		{"; DROP TABLE invoices", "asc", "created_at ASC"},
	}
	for _, tt := range tests {
		filter := invoice.Filter{}
		filter.OrderBy = tt.orderBy
		filter.OrderDir = tt.orderDir
		assert.Equal(t, tt.expected, orderClause(filter))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)`)))
	assert.False(t, isUniqueViolation(assert.AnError))
}
