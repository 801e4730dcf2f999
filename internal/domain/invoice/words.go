package invoice

import (
	"fmt"
	"strings"

	"github.com/buildium/backend/internal/domain/shared"
	"github.com/buildium/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// French number spelling for the amount-in-words line of the invoice.
// Follows the 1990 orthography: all words are joined with hyphens.

var frUnits = [20]string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
	"dix-sept", "dix-huit", "dix-neuf",
}

var frTens = map[int64]string{
	20: "vingt",
	30: "trente",
	40: "quarante",
	50: "cinquante",
	60: "soixante",
}

// AmountInWords converts a non-negative integer into its French
// spelling. Pure and deterministic; negative input is rejected
// explicitly rather than mis-rendered.
func AmountInWords(n int64) (string, error) {
	if n < 0 {
		return "", shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Cannot spell negative amount %d", n))
	}
	if n == 0 {
		return frUnits[0], nil
	}
	return spell(n), nil
}

// spell handles strictly positive n by magnitude groups of 1000.
func spell(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return spellScale(n, 1_000_000_000, "milliard", "milliards")
	case n >= 1_000_000:
		return spellScale(n, 1_000_000, "million", "millions")
	case n >= 1000:
		return spellThousands(n)
	default:
		return spellBelowThousand(n, false)
	}
}

// spellScale spells n for a pluralizing scale word (million, milliard).
func spellScale(n, scale int64, singular, plural string) string {
	count := n / scale
	rest := n % scale
	word := singular
	if count > 1 {
		word = plural
	}
	s := spell(count) + "-" + word
	if rest > 0 {
		s += "-" + spell(rest)
	}
	return s
}

// spellThousands spells 1000..999999. "mille" is invariable and takes
// no multiplier when the count is exactly one. The multiplier itself
// is followed by "mille", so "cent" and "vingt" stay singular there:
// deux-cent-mille, quatre-vingt-mille.
func spellThousands(n int64) string {
	count := n / 1000
	rest := n % 1000
	var s string
	if count == 1 {
		s = "mille"
	} else {
		s = spellBelowThousand(count, true) + "-mille"
	}
	if rest > 0 {
		s += "-" + spellBelowThousand(rest, false)
	}
	return s
}

// spellBelowThousand spells 1..999. followed marks that another
// numeral comes after, which suppresses the plural "s" on cents.
func spellBelowThousand(n int64, followed bool) string {
	if n >= 100 {
		count := n / 100
		rest := n % 100
		var s string
		if count == 1 {
			s = "cent"
		} else {
			s = frUnits[count] + "-cent"
			// "cents" only when nothing follows: deux-cents / deux-cent-un
			if rest == 0 && !followed {
				s += "s"
			}
		}
		if rest > 0 {
			s += "-" + spellBelowHundred(rest, followed)
		}
		return s
	}
	return spellBelowHundred(n, followed)
}

// spellBelowHundred spells 1..99 with the French irregular compounds:
// teens as lookups, 70s and 90s on soixante/quatre-vingt, "et" before
// un/onze except after quatre-vingt. followed suppresses the plural
// "s" on quatre-vingts.
func spellBelowHundred(n int64, followed bool) string {
	if n < 20 {
		return frUnits[n]
	}

	switch {
	case n >= 80:
		rest := n - 80
		if rest == 0 {
			if followed {
				return "quatre-vingt"
			}
			return "quatre-vingts"
		}
		// no "et" after quatre-vingt: quatre-vingt-un, quatre-vingt-onze
		return "quatre-vingt-" + frUnits[rest]
	case n >= 60:
		// 60..79 all build on soixante: soixante-dix, soixante-et-onze
		rest := n - 60
		if rest == 0 {
			return "soixante"
		}
		if rest == 1 || rest == 11 {
			return "soixante-et-" + frUnits[rest]
		}
		return "soixante-" + frUnits[rest]
	default:
		tens := (n / 10) * 10
		rest := n % 10
		if rest == 0 {
			return frTens[tens]
		}
		if rest == 1 {
			return frTens[tens] + "-et-un"
		}
		return frTens[tens] + "-" + frUnits[rest]
	}
}

// AmountInWordsMAD spells a monetary amount in dirhams and centimes,
// e.g. "deux-cent-quarante dirhams et cinquante centimes". The money
// must carry the MAD currency and be non-negative; centimes are taken
// from the amount rounded to 2 decimal places, matching the rendered
// numeric presentation.
func AmountInWordsMAD(m valueobject.Money) (string, error) {
	if m.Currency() != valueobject.MAD {
		return "", shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Cannot spell amount in currency %s", m.Currency()))
	}
	if m.IsNegative() {
		return "", shared.NewDomainError("INVALID_AMOUNT", "Cannot spell negative monetary amount")
	}
	rounded := m.Amount().Round(2)
	dirhams := rounded.IntPart()
	centimes := rounded.Sub(decimal.NewFromInt(dirhams)).Mul(oneHundred).IntPart()

	dirhamWords, err := AmountInWords(dirhams)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(dirhamWords)
	if dirhams > 1 {
		b.WriteString(" dirhams")
	} else {
		b.WriteString(" dirham")
	}
	if centimes > 0 {
		centimeWords, err := AmountInWords(centimes)
		if err != nil {
			return "", err
		}
		b.WriteString(" et ")
		b.WriteString(centimeWords)
		if centimes > 1 {
			b.WriteString(" centimes")
		} else {
			b.WriteString(" centime")
		}
	}
	return b.String(), nil
}
