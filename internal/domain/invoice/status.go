package invoice

// Status represents the settlement status of an issued invoice.
// It is the only mutable field of an invoice after issuance.
type Status string

const (
	StatusPending     Status = "pending"      // awaiting settlement
	StatusResolved    Status = "resolved"     // paid / settled
	StatusNotResolved Status = "not_resolved" // flagged unpaid
)

// IsValid checks if the Status is a valid value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusResolved, StatusNotResolved:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// DisplayName returns the French display name for Status
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusResolved:
		return "Réglée"
	case StatusNotResolved:
		return "Non réglée"
	default:
		return string(s)
	}
}

// ArtifactState tracks the outcome of storing the rendered document.
// A render_failed invoice keeps its allocated number so the numbering
// gap stays diagnosable.
type ArtifactState string

const (
	ArtifactStored       ArtifactState = "stored"
	ArtifactRenderFailed ArtifactState = "render_failed"
)

// IsValid checks if the ArtifactState is a valid value
func (a ArtifactState) IsValid() bool {
	switch a {
	case ArtifactStored, ArtifactRenderFailed:
		return true
	}
	return false
}

// String returns the string representation of ArtifactState
func (a ArtifactState) String() string {
	return string(a)
}
