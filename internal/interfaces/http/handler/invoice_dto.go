package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/buildium/backend/internal/domain/invoice"
	"github.com/buildium/backend/internal/interfaces/http/dto"
)

// dateLayout is the wire format for calendar dates
const dateLayout = "2006-01-02"

// amount converts a JSON number into an exact decimal amount
func amount(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func amountPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// PartyRequest carries the counterparty submitted with an issuance request
type PartyRequest struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address" binding:"required"`
	ICE           string `json:"ice"`
	RC            string `json:"rc"`
	TaxID         string `json:"tax_id"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	ContactPerson string `json:"contact_person"`
}

func (r PartyRequest) toParty() invoice.Party {
	return invoice.Party{
		Name:          r.Name,
		Address:       r.Address,
		ICE:           r.ICE,
		RC:            r.RC,
		TaxID:         r.TaxID,
		Phone:         r.Phone,
		Email:         r.Email,
		ContactPerson: r.ContactPerson,
	}
}

// LineItemRequest carries one invoice line. Derived amounts are never
// accepted from the caller.
type LineItemRequest struct {
	Reference     string  `json:"reference" binding:"required"`
	Designation   string  `json:"designation" binding:"required"`
	Quantity      float64 `json:"quantity" binding:"min=0"`
	Unit          string  `json:"unit" binding:"required"`
	UnitPriceExcl float64 `json:"unit_price_excl" binding:"min=0"`
	TaxRate       float64 `json:"tax_rate" binding:"min=0,max=100"`
}

func (r LineItemRequest) toLineItem() invoice.LineItem {
	return invoice.LineItem{
		Reference:     r.Reference,
		Designation:   r.Designation,
		Quantity:      amount(r.Quantity),
		Unit:          r.Unit,
		UnitPriceExcl: amount(r.UnitPriceExcl),
		TaxRate:       amount(r.TaxRate),
	}
}

// IssueInvoiceRequest is the request body for issuing an invoice
type IssueInvoiceRequest struct {
	IssueDate    string            `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	Counterparty PartyRequest      `json:"counterparty" binding:"required"`
	Lines        []LineItemRequest `json:"lines" binding:"required,min=1,dive"`
}

// ListInvoicesRequest holds list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	Status    string   `form:"status" binding:"omitempty,oneof=pending resolved not_resolved"`
	DateFrom  string   `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo    string   `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	MinAmount *float64 `form:"min_amount" binding:"omitempty,min=0"`
	MaxAmount *float64 `form:"max_amount" binding:"omitempty,min=0"`
}

func (r ListInvoicesRequest) toFilter() invoice.Filter {
	filter := invoice.Filter{}
	filter.Page = r.Page
	filter.PageSize = r.PageSize
	filter.OrderBy = r.OrderBy
	filter.OrderDir = r.OrderDir
	filter.Search = r.Search

	if r.Status != "" {
		status := invoice.Status(r.Status)
		filter.Status = &status
	}
	if r.DateFrom != "" {
		if t, err := time.Parse(dateLayout, r.DateFrom); err == nil {
			filter.DateFrom = &t
		}
	}
	if r.DateTo != "" {
		if t, err := time.Parse(dateLayout, r.DateTo); err == nil {
			// Inclusive upper bound covering the whole day
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.DateTo = &end
		}
	}
	if r.MinAmount != nil {
		filter.MinAmount = amountPtr(*r.MinAmount)
	}
	if r.MaxAmount != nil {
		filter.MaxAmount = amountPtr(*r.MaxAmount)
	}
	return filter
}

// NumberRequest carries an invoice number path parameter
type NumberRequest struct {
	Number string `uri:"number" binding:"required,invoice_number"`
}

// UpdateStatusRequest is the request body for a status transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending resolved not_resolved"`
}

// PartyResponse mirrors a stored invoice party
type PartyResponse struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ICE           string `json:"ice,omitempty"`
	RC            string `json:"rc,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// LineResponse mirrors one stored invoice line with derived amounts
type LineResponse struct {
	Position      int             `json:"position"`
	Reference     string          `json:"reference"`
	Designation   string          `json:"designation"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	UnitPriceExcl decimal.Decimal `json:"unit_price_excl"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TotalExcl     decimal.Decimal `json:"total_excl"`
	Tax           decimal.Decimal `json:"tax"`
	TotalIncl     decimal.Decimal `json:"total_incl"`
}

// TotalsResponse mirrors invoice totals
type TotalsResponse struct {
	TotalExcl decimal.Decimal `json:"total_excl"`
	TotalTax  decimal.Decimal `json:"total_tax"`
	TotalIncl decimal.Decimal `json:"total_incl"`
}

// InvoiceResponse is the full representation of an issued invoice
type InvoiceResponse struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"`
	IssueDate     string         `json:"issue_date"`
	Issuer        PartyResponse  `json:"issuer"`
	Counterparty  PartyResponse  `json:"counterparty"`
	Lines         []LineResponse `json:"lines,omitempty"`
	Totals        TotalsResponse `json:"totals"`
	Status        string         `json:"status"`
	StatusDisplay string         `json:"status_display"`
	ArtifactState string         `json:"artifact_state"`
	AmountInWords string         `json:"amount_in_words,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// InvoiceSummaryResponse is the list representation, without lines
type InvoiceSummaryResponse struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"`
	IssueDate     string         `json:"issue_date"`
	Counterparty  string         `json:"counterparty"`
	Totals        TotalsResponse `json:"totals"`
	Status        string         `json:"status"`
	StatusDisplay string         `json:"status_display"`
	ArtifactState string         `json:"artifact_state"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toPartyResponse(p invoice.Party) PartyResponse {
	return PartyResponse{
		Name:          p.Name,
		Address:       p.Address,
		ICE:           p.ICE,
		RC:            p.RC,
		TaxID:         p.TaxID,
		Phone:         p.Phone,
		Email:         p.Email,
		ContactPerson: p.ContactPerson,
	}
}

func toInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	lines := make([]LineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = LineResponse{
			Position:      l.Position,
			Reference:     l.Reference,
			Designation:   l.Designation,
			Quantity:      l.Quantity,
			Unit:          l.Unit,
			UnitPriceExcl: l.UnitPriceExcl,
			TaxRate:       l.TaxRate,
			TotalExcl:     l.TotalExcl,
			Tax:           l.Tax,
			TotalIncl:     l.TotalIncl,
		}
	}

	words, err := invoice.AmountInWordsMAD(inv.Totals.InclAmount())
	if err != nil {
		words = ""
	}

	return InvoiceResponse{
		ID:            inv.ID.String(),
		Number:        inv.Number,
		IssueDate:     inv.IssueDate.Format(dateLayout),
		Issuer:        toPartyResponse(inv.Issuer),
		Counterparty:  toPartyResponse(inv.Counterparty),
		Lines:         lines,
		Totals: TotalsResponse{
			TotalExcl: inv.Totals.TotalExcl,
			TotalTax:  inv.Totals.TotalTax,
			TotalIncl: inv.Totals.TotalIncl,
		},
		Status:        string(inv.Status),
		StatusDisplay: inv.Status.DisplayName(),
		ArtifactState: string(inv.ArtifactState),
		AmountInWords: words,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func toInvoiceSummaryResponse(inv *invoice.Invoice) InvoiceSummaryResponse {
	return InvoiceSummaryResponse{
		ID:           inv.ID.String(),
		Number:       inv.Number,
		IssueDate:    inv.IssueDate.Format(dateLayout),
		Counterparty: inv.Counterparty.Name,
		Totals: TotalsResponse{
			TotalExcl: inv.Totals.TotalExcl,
			TotalTax:  inv.Totals.TotalTax,
			TotalIncl: inv.Totals.TotalIncl,
		},
		Status:        string(inv.Status),
		StatusDisplay: inv.Status.DisplayName(),
		ArtifactState: string(inv.ArtifactState),
		CreatedAt:     inv.CreatedAt,
	}
}
