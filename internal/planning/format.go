package planning

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frBE = language.MustParse("fr-BE")

// FormatCurrency renders amount as whole euros with Belgian French digit
// grouping, e.g. "25 000 €".
func FormatCurrency(amount float64) string {
	p := message.NewPrinter(frBE)
	return p.Sprintf("%d €", int64(math.Round(amount)))
}

// FormatNumber rounds n and renders it with Belgian French digit grouping.
func FormatNumber(n float64) string {
	p := message.NewPrinter(frBE)
	return p.Sprintf("%d", int64(math.Round(n)))
}

// FormatPercent renders a 0-1 fraction as a whole percentage.
func FormatPercent(fraction float64) string {
	p := message.NewPrinter(frBE)
	return p.Sprintf("%d %%", int64(math.Round(fraction*100)))
}
