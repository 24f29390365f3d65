// Package report renders sales summaries and pivots for people (text) and
// for spreadsheets (CSV).
package report

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/schema"
)

// Formatter prints money and counts for one currency and locale.
// It is safe for concurrent use once built.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	code    string
	hasUnit bool
}

// NewFormatter builds a formatter for an ISO 4217 code and a BCP 47 locale.
// An unknown locale falls back to English; an unknown currency code is
// printed as a plain prefix.
func NewFormatter(code, locale string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	f := &Formatter{tag: tag, code: strings.ToUpper(strings.TrimSpace(code))}
	if f.code != "" {
		if unit, err := currency.ParseISO(f.code); err == nil {
			f.unit, f.hasUnit = unit, true
		}
	}
	return f
}

// FormatterFor builds a formatter from a schema's display settings.
func FormatterFor(d schema.Display) *Formatter {
	return NewFormatter(d.Currency, d.Locale)
}

// Currency returns the ISO code the formatter prints, or "".
func (f *Formatter) Currency() string { return f.code }

// Money formats an amount with the locale's symbol and separators,
// e.g. "$ 1.234.500,00" for COP in es-CO.
func (f *Formatter) Money(amount float64) string {
	if !f.hasUnit {
		return engine.FormatCurrency(amount, f.code)
	}
	return message.NewPrinter(f.tag).Sprint(currency.Symbol(f.unit.Amount(amount)))
}

// Int formats a count with the locale's grouping separator.
func (f *Formatter) Int(n int) string {
	return message.NewPrinter(f.tag).Sprintf("%d", n)
}
