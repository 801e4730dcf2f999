package invoice

import (
	"strings"

	"github.com/buildium/backend/internal/domain/shared"
)

// Party identifies one side of an invoice. The same shape is used for
// the fixed issuer (injected from configuration) and the variable
// counterparty submitted with each issuance request. Immutable once an
// invoice is persisted.
type Party struct {
	Name          string `gorm:"type:varchar(200);not null" json:"name"`
	Address       string `gorm:"type:varchar(500);not null" json:"address"`
	ICE           string `gorm:"type:varchar(50)" json:"ice"`     // Identifiant Commun de l'Entreprise
	RC            string `gorm:"type:varchar(50)" json:"rc"`      // Registre de Commerce
	TaxID         string `gorm:"type:varchar(50)" json:"tax_id"`  // Identifiant fiscal
	Phone         string `gorm:"type:varchar(50)" json:"phone"`
	Email         string `gorm:"type:varchar(200)" json:"email"`
	ContactPerson string `gorm:"type:varchar(200)" json:"contact_person"`
}

// Validate checks the fields a counterparty must carry.
// The issuer is validated once at configuration load.
func (p Party) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.NewDomainError("INVALID_PARTY", "Party name is required")
	}
	if strings.TrimSpace(p.Address) == "" {
		return shared.NewDomainError("INVALID_PARTY", "Party address is required")
	}
	return nil
}
