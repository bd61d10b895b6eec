package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is one entry of the software catalog. The catalog is loaded once at
// startup and never mutated afterwards.
type Product struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Description     string          `json:"description"`
	FullDescription string          `json:"fullDescription"`
	Features        []string        `json:"features"`
	Benefits        []string        `json:"benefits"`
	Requirements    string          `json:"requirements"`
	Image           string          `json:"image"`
}

// FormatPrice renders a whole-dollar USD price with thousands separators,
// e.g. 1299 -> "$1,299".
func FormatPrice(p decimal.Decimal) string {
	s := p.Round(0).String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return fmt.Sprintf("-$%s", b.String())
	}
	return fmt.Sprintf("$%s", b.String())
}
