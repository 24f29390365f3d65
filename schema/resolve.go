package schema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// HEADER RESOLUTION — Maps dataset headers onto logical fields
// ============================================================================
// Headers are compared by a normalized key: accents stripped, Unicode case
// folded, spaces/dashes collapsed to underscores. "Método de pago",
// "METODO DE PAGO" and "metodo-de-pago" all produce "metodo_de_pago".
// ============================================================================

var (
	// ErrMissingColumn is wrapped by SchemaError.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidConfig reports a configuration that cannot drive the pipeline.
	ErrInvalidConfig = errors.New("invalid schema config")
)

// SchemaError names a required field no dataset header resolved to.
type SchemaError struct {
	Field    Field
	Accepted []string
	// Missing lists every unresolved required field, Field included.
	Missing []Field
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s %q (accepted headers: %s)",
		ErrMissingColumn, string(e.Field), strings.Join(e.Accepted, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrMissingColumn }

// Mapping maps a logical field to the dataset header that carries it.
type Mapping map[Field]string

// Has reports whether the dataset carries the field.
func (m Mapping) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Resolve matches headers against the accepted aliases of every field.
// The first header matching any alias wins. A missing optional field is
// simply absent from the mapping; a missing required field is a *SchemaError.
func (c Config) Resolve(headers []string) (Mapping, error) {
	byKey := make(map[string]string, len(headers))
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		key := HeaderKey(h)
		if _, exists := byKey[key]; !exists {
			byKey[key] = h
		}
	}

	mapping := make(Mapping, len(Fields))
	var missing []Field
	for _, f := range Fields {
		aliases := c.Columns[f]
		if len(aliases) == 0 {
			aliases = []string{string(f)}
		}
		found := false
		for _, alias := range aliases {
			if h, ok := byKey[HeaderKey(alias)]; ok {
				mapping[f] = h
				found = true
				break
			}
		}
		if !found && f.Required() {
			missing = append(missing, f)
		}
	}

	if len(missing) > 0 {
		return mapping, &SchemaError{
			Field:    missing[0],
			Accepted: c.Columns[missing[0]],
			Missing:  missing,
		}
	}
	return mapping, nil
}

// HeaderKey normalizes a header for alias comparison.
func HeaderKey(s string) string {
	s = Fold(stripAccents(strings.TrimSpace(s)))

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if r == ' ' || r == '-' || r == '_' || unicode.IsSpace(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Fold applies Unicode case folding. A new Caser per call keeps it safe for
// concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Validate reports configuration that would make classification ambiguous or
// quantity extraction impossible.
func (c Config) Validate() error {
	for _, sep := range c.QuantitySeparators {
		if strings.TrimSpace(sep) == "" {
			return fmt.Errorf("%w: blank quantity separator", ErrInvalidConfig)
		}
	}
	completed := make(map[string]bool, len(c.Status.Completed))
	for _, tok := range c.Status.Completed {
		completed[Fold(strings.TrimSpace(tok))] = true
	}
	for _, tok := range c.Status.Refunded {
		if completed[Fold(strings.TrimSpace(tok))] {
			return fmt.Errorf("%w: status %q is both completed and refunded", ErrInvalidConfig, tok)
		}
	}
	return nil
}
