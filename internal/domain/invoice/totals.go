package invoice

import (
	"fmt"
	"strings"

	"github.com/buildium/backend/internal/domain/shared"
	"github.com/buildium/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is the caller-supplied input for one invoice row.
// Derived amounts are never accepted from the caller.
type LineItem struct {
	Reference     string          `json:"reference"`
	Designation   string          `json:"designation"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	UnitPriceExcl decimal.Decimal `json:"unit_price_excl"`
	TaxRate       decimal.Decimal `json:"tax_rate"` // percent, e.g. 20 for 20%
}

// Validate rejects a malformed line before any computation happens.
func (l LineItem) Validate() error {
	if strings.TrimSpace(l.Reference) == "" {
		return shared.NewDomainError("INVALID_LINE", "Line reference is required")
	}
	if strings.TrimSpace(l.Designation) == "" {
		return shared.NewDomainError("INVALID_LINE", "Line designation is required")
	}
	if strings.TrimSpace(l.Unit) == "" {
		return shared.NewDomainError("INVALID_LINE", "Line unit is required")
	}
	if l.Quantity.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Quantity cannot be negative for line %s", l.Reference))
	}
	if l.UnitPriceExcl.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Unit price cannot be negative for line %s", l.Reference))
	}
	if l.TaxRate.IsNegative() {
		return shared.NewDomainError("INVALID_LINE", fmt.Sprintf("Tax rate cannot be negative for line %s", l.Reference))
	}
	return nil
}

// ComputedLine is a line item extended with its derived amounts.
// Persisted as one row of the invoice, ordered by Position.
type ComputedLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position      int             `gorm:"not null" json:"position"`
	Reference     string          `gorm:"type:varchar(100);not null" json:"reference"`
	Designation   string          `gorm:"type:varchar(500);not null" json:"designation"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit          string          `gorm:"type:varchar(50);not null" json:"unit"`
	UnitPriceExcl decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price_excl"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"tax_rate"`
	TotalExcl     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_excl"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"tax"`
	TotalIncl     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_incl"`
}

// TableName returns the table name for GORM
func (ComputedLine) TableName() string {
	return "invoice_lines"
}

// Totals aggregates the derived amounts of all lines of an invoice.
type Totals struct {
	TotalExcl decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_excl"`
	TotalTax  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_tax"`
	TotalIncl decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_incl"`
}

// Money views of the aggregate, carrying the billing currency.

func (t Totals) ExclAmount() valueobject.Money {
	return valueobject.NewMoneyMAD(t.TotalExcl)
}

func (t Totals) TaxAmount() valueobject.Money {
	return valueobject.NewMoneyMAD(t.TotalTax)
}

func (t Totals) InclAmount() valueobject.Money {
	return valueobject.NewMoneyMAD(t.TotalIncl)
}

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals derives per-line amounts and the aggregate totals from
// pre-validated input lines, in input order. No rounding is applied
// here; presentation rounds to 2 decimal places at render time only.
func ComputeTotals(lines []LineItem) ([]ComputedLine, Totals, error) {
	if len(lines) == 0 {
		return nil, Totals{}, shared.NewDomainError("INVALID_LINES", "At least one line item is required")
	}

	computed := make([]ComputedLine, 0, len(lines))
	totals := Totals{
		TotalExcl: decimal.Zero,
		TotalTax:  decimal.Zero,
		TotalIncl: decimal.Zero,
	}

	for i, l := range lines {
		if err := l.Validate(); err != nil {
			return nil, Totals{}, err
		}

		totalExcl := l.Quantity.Mul(l.UnitPriceExcl)
		tax := totalExcl.Mul(l.TaxRate).Div(oneHundred)
		totalIncl := totalExcl.Add(tax)

		computed = append(computed, ComputedLine{
			ID:            uuid.New(),
			Position:      i,
			Reference:     l.Reference,
			Designation:   l.Designation,
			Quantity:      l.Quantity,
			Unit:          l.Unit,
			UnitPriceExcl: l.UnitPriceExcl,
			TaxRate:       l.TaxRate,
			TotalExcl:     totalExcl,
			Tax:           tax,
			TotalIncl:     totalIncl,
		})

		totals.TotalExcl = totals.TotalExcl.Add(totalExcl)
		totals.TotalTax = totals.TotalTax.Add(tax)
	}

	totals.TotalIncl = totals.TotalExcl.Add(totals.TotalTax)

	return computed, totals, nil
}
