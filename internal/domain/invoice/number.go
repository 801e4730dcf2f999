package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/buildium/backend/internal/domain/shared"
)

// NumberPrefix is the fixed prefix of every invoice number.
const NumberPrefix = "INV"

// numberPattern matches INV-YYYYMMDD-NNN. The sequence is at least
// 3 digits; days with 1000+ invoices widen the field rather than
// truncate (documented limit of the zero-padded format).
var numberPattern = regexp.MustCompile(`^INV-(\d{8})-(\d{3,})$`)

// FormatNumber builds the wire-visible invoice number for a given day
// and sequence value, e.g. INV-20250131-007.
func FormatNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", NumberPrefix, day.Format("20060102"), seq)
}

// ParseNumber splits an invoice number into its day and sequence parts.
func ParseNumber(number string) (time.Time, int, error) {
	m := numberPattern.FindStringSubmatch(number)
	if m == nil {
		return time.Time{}, 0, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("Invalid invoice number format: %q", number))
	}
	day, err := time.Parse("20060102", m[1])
	if err != nil {
		return time.Time{}, 0, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("Invalid date in invoice number: %q", number))
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil || seq < 1 {
		return time.Time{}, 0, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("Invalid sequence in invoice number: %q", number))
	}
	return day, seq, nil
}

// DayKey returns the canonical per-day counter key (midnight UTC is not
// forced: allocation is scoped by the server's calendar day).
func DayKey(day time.Time) string {
	return day.Format("20060102")
}
