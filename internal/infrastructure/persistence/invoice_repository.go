package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/domain/shared"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

var _ invoice.Repository = (*GormInvoiceRepository)(nil)

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create persists a new invoice with its lines
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds an invoice by ID, including its lines in order
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByNumber finds an invoice by its allocated number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&inv, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindAll finds invoices matching the filter, with pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoice.Filter) ([]invoice.Invoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&invoice.Invoice{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(orderClause(filter))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var invoices []invoice.Invoice
	if err := query.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// UpdateStatus transitions the settlement status of an invoice
func (r *GormInvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status) error {
	result := r.db.WithContext(ctx).Model(&invoice.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateArtifact records the artifact reference and state
func (r *GormInvoiceRepository) UpdateArtifact(ctx context.Context, id uuid.UUID, state invoice.ArtifactState, ref string) error {
	result := r.db.WithContext(ctx).Model(&invoice.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{"artifact_state": state, "artifact_ref": ref, "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Statistics aggregates counts and total revenue across all invoices
func (r *GormInvoiceRepository) Statistics(ctx context.Context) (*invoice.Statistics, error) {
	var stats invoice.Statistics
	err := r.db.WithContext(ctx).Model(&invoice.Invoice{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'resolved') AS resolved,
			COUNT(*) FILTER (WHERE status = 'not_resolved') AS not_resolved,
			COALESCE(SUM(total_total_incl), 0) AS total_amount`).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// applyFilter builds the WHERE clause shared by Count and Find
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoice.Filter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("issue_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("issue_date <= ?", *filter.DateTo)
	}
	if filter.MinAmount != nil {
		query = query.Where("total_total_incl >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_total_incl <= ?", *filter.MaxAmount)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("number ILIKE ? OR counterparty_name ILIKE ?", like, like)
	}
	return query
}

// orderClause maps the filter's sort key to a column, defaulting to
// newest first. Only known keys are accepted so user input never
// reaches the ORDER BY clause verbatim.
func orderClause(filter invoice.Filter) string {
	column := map[string]string{
		"date":   "issue_date",
		"number": "number",
		"client": "counterparty_name",
		"amount": "total_total_incl",
	}[filter.OrderBy]
	if column == "" {
		column = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}

// isUniqueViolation reports whether err comes from a unique constraint.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "23505")
}
