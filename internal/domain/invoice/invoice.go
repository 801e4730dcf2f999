package invoice

import (
	"fmt"
	"time"

	"github.com/buildium/backend/internal/domain/shared"
)

// Invoice is the aggregate root of an issued invoice. Everything except
// Status is immutable after issuance; the record is an append-only
// ledger entry identified by its allocated number.
type Invoice struct {
	shared.BaseEntity
	Number        string         `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	IssueDate     time.Time      `gorm:"not null;index" json:"issue_date"`
	Issuer        Party          `gorm:"embedded;embeddedPrefix:issuer_" json:"issuer"`
	Counterparty  Party          `gorm:"embedded;embeddedPrefix:counterparty_" json:"counterparty"`
	Lines         []ComputedLine `gorm:"foreignKey:InvoiceID;references:ID" json:"lines"`
	Totals        Totals         `gorm:"embedded;embeddedPrefix:total_" json:"totals"`
	Status        Status         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ArtifactState ArtifactState  `gorm:"type:varchar(20);not null;default:'stored'" json:"artifact_state"`
	ArtifactRef   string         `gorm:"type:varchar(500)" json:"artifact_ref"` // stable reference into artifact storage
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice assembles an invoice from an allocated number and
// pre-computed amounts. It does not recompute totals: the caller is the
// totals engine's output.
func NewInvoice(
	number string,
	issueDate time.Time,
	issuer Party,
	counterparty Party,
	lines []ComputedLine,
	totals Totals,
) (*Invoice, error) {
	if _, _, err := ParseNumber(number); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	if err := issuer.Validate(); err != nil {
		return nil, err
	}
	if err := counterparty.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINES", "At least one line item is required")
	}

	inv := &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		Number:        number,
		IssueDate:     issueDate,
		Issuer:        issuer,
		Counterparty:  counterparty,
		Lines:         lines,
		Totals:        totals,
		Status:        StatusPending,
		ArtifactState: ArtifactStored,
	}
	for i := range inv.Lines {
		inv.Lines[i].InvoiceID = inv.ID
	}
	return inv, nil
}

// SetArtifact records where the rendered document was stored.
func (inv *Invoice) SetArtifact(ref string) {
	inv.ArtifactRef = ref
	inv.ArtifactState = ArtifactStored
	inv.UpdatedAt = time.Now()
}

// MarkRenderFailed flags that the allocated number was consumed but the
// rendered document could not be stored. The gap stays diagnosable and
// the artifact can be regenerated later from the structured data.
func (inv *Invoice) MarkRenderFailed() {
	inv.ArtifactRef = ""
	inv.ArtifactState = ArtifactRenderFailed
	inv.UpdatedAt = time.Now()
}

// ChangeStatus transitions the settlement status.
func (inv *Invoice) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status %q", status))
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

// ArtifactFilename returns the storage filename convention for the
// rendered document, <number>.pdf.
func (inv *Invoice) ArtifactFilename() string {
	return inv.Number + ".pdf"
}

// HasArtifact reports whether a stored artifact reference exists.
func (inv *Invoice) HasArtifact() bool {
	return inv.ArtifactState == ArtifactStored && inv.ArtifactRef != ""
}
