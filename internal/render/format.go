package render

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter formats numbers for one locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a Formatter for tag.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{p: message.NewPrinter(tag)}
}

var defaultFormatter = NewFormatter(language.English)

// Price formats a price. Whole numbers have no decimals.
func (f *Formatter) Price(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return f.p.Sprintf("%d", int64(v))
	}
	return f.p.Sprintf("%.2f", v)
}

// Volume formats an order volume.
func (f *Formatter) Volume(v int64) string {
	return f.p.Sprintf("%d", v)
}

// OptionalPrice formats v, or "-" when missing.
func (f *Formatter) OptionalPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return f.Price(*v)
}
