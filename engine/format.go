package engine

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================
// Locale-free formatting used in table summaries and CSV output. Locale-aware
// currency display lives in the report package.
// ============================================================================

// FormatCurrency formats an amount with an optional unit prefix and comma
// separators: FormatCurrency(1234.5, "USD") == "USD 1,234.50".
func FormatCurrency(amount float64, unit string) string {
	cents := int64(math.Round(math.Abs(amount) * 100))
	s := groupThousands(cents/100) + "." + pad2(cents%100)
	if unit != "" {
		s = unit + " " + s
	}
	if amount < 0 && cents != 0 {
		s = "-" + s
	}
	return s
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + groupThousands(int64(-n))
	}
	return groupThousands(int64(n))
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LabelForDimension turns a snake_case key into a display label:
// "payment_method" → "Payment method".
func LabelForDimension(dimension string) string {
	if len(dimension) == 0 {
		return ""
	}
	s := strings.ReplaceAll(dimension, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
