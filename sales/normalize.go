package sales

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/salespulse/schema"
)

// ============================================================================
// FIELD NORMALIZER — Raw rows → OrderRecords
// ============================================================================
// Best effort: malformed amounts become 0 and missing multipliers become 1.
// The only failure is a dataset that lacks a required column.
// ============================================================================

// Normalizer converts raw rows using one schema configuration.
// It is immutable and safe for concurrent use.
type Normalizer struct {
	cfg        schema.Config
	classifier *Classifier
	quantityRe *regexp.Regexp
}

// NewNormalizer compiles the quantity pattern and status vocabulary of cfg.
func NewNormalizer(cfg schema.Config) *Normalizer {
	return &Normalizer{
		cfg:        cfg,
		classifier: NewClassifier(cfg.Status),
		quantityRe: quantityPattern(cfg.QuantitySeparators),
	}
}

// Normalize converts a dataset with the default schema.
func Normalize(ds Dataset) ([]OrderRecord, error) {
	return NewNormalizer(schema.Default()).Normalize(ds)
}

// Normalize resolves the dataset's headers and converts every non-empty row.
// Output order matches input order. A missing required column returns a
// *schema.SchemaError.
func (n *Normalizer) Normalize(ds Dataset) ([]OrderRecord, error) {
	mapping, err := n.cfg.Resolve(datasetHeaders(ds))
	if err != nil {
		return nil, err
	}

	records := make([]OrderRecord, 0, len(ds.Rows))
	for _, raw := range ds.Rows {
		row := trimKeys(raw)
		if isBlankRow(row) {
			continue
		}
		records = append(records, n.record(row, mapping))
	}
	return records, nil
}

func (n *Normalizer) record(row map[string]any, m schema.Mapping) OrderRecord {
	field := func(f schema.Field) any {
		if h, ok := m[f]; ok {
			return row[h]
		}
		return nil
	}

	label := Text(field(schema.FieldProduct))
	qty, product := n.ExtractQuantity(label)
	if m.Has(schema.FieldQuantity) {
		if explicit, ok := parseQuantity(field(schema.FieldQuantity)); ok {
			qty = explicit
		}
	}

	rawStatus := Text(field(schema.FieldStatus))
	return OrderRecord{
		OrderID:           Text(field(schema.FieldOrderID)),
		ProductLabel:      label,
		Product:           product,
		Quantity:          qty,
		Status:            n.classifier.Classify(rawStatus),
		RawStatus:         rawStatus,
		NetAmount:         ParseAmount(field(schema.FieldAmount), n.cfg.CurrencySymbols),
		PaymentMethod:     Text(field(schema.FieldPaymentMethod)),
		AttributionSource: Text(field(schema.FieldAttributionSource)),
	}
}

// ============================================================================
// QUANTITY EXTRACTION
// ============================================================================

// ExtractQuantity reads a leading "<n><sep>" multiplier off a product label.
// It returns the multiplier (1 when absent, zero, or above math.MaxInt32) and
// the label without it.
// "3x Widget" → (3, "Widget"); "x3 Widget" → (1, "x3 Widget").
func (n *Normalizer) ExtractQuantity(label string) (int, string) {
	label = strings.TrimSpace(label)
	match := n.quantityRe.FindStringSubmatch(label)
	if match == nil {
		return 1, label
	}
	product := strings.TrimSpace(match[2])
	if product == "" {
		product = label
	}
	qty, err := strconv.Atoi(match[1])
	if err != nil || qty < 1 || qty > math.MaxInt32 {
		return 1, product
	}
	return qty, product
}

// ExtractQuantity applies the default separators ("x", "×").
func ExtractQuantity(label string) (int, string) {
	return NewNormalizer(schema.Default()).ExtractQuantity(label)
}

func quantityPattern(separators []string) *regexp.Regexp {
	if len(separators) == 0 {
		separators = schema.Default().QuantitySeparators
	}
	quoted := make([]string, len(separators))
	for i, sep := range separators {
		quoted[i] = regexp.QuoteMeta(strings.TrimSpace(sep))
	}
	return regexp.MustCompile(`(?is)^(\d+)\s*(?:` + strings.Join(quoted, "|") + `)(.*)$`)
}

// parseQuantity accepts an explicit quantity cell holding a whole number >= 1.
func parseQuantity(v any) (int, bool) {
	f, ok := number(v)
	if !ok || f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ============================================================================
// CURRENCY PARSING
// ============================================================================

// maxAmount bounds a single amount so totals stay finite.
const maxAmount = 1e15

// ParseAmount converts a money cell to a number. Numbers pass through;
// strings lose every configured symbol and all whitespace before parsing.
// Anything unparseable or larger in magnitude than maxAmount is 0.
func ParseAmount(v any, symbols []string) float64 {
	if s, ok := v.(string); ok {
		for _, sym := range symbols {
			if sym != "" {
				s = strings.ReplaceAll(s, sym, "")
			}
		}
		v = strings.Join(strings.Fields(s), "")
	}
	f, ok := number(v)
	if !ok || math.Abs(f) > maxAmount {
		return 0
	}
	return f
}

func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ============================================================================
// ROW HELPERS
// ============================================================================

// Text renders a cell as trimmed text. Whole floats lose their decimals so a
// JSON order id of 1001 reads "1001", not "1001.000000".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return Text(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func trimKeys(row Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func isBlankRow(row map[string]any) bool {
	for _, v := range row {
		if Text(v) != "" {
			return false
		}
	}
	return true
}

// datasetHeaders returns the declared columns, or the sorted union of row
// keys when the dataset carries none (JSON input).
func datasetHeaders(ds Dataset) []string {
	if len(ds.Columns) > 0 {
		out := make([]string, len(ds.Columns))
		for i, c := range ds.Columns {
			out[i] = strings.TrimSpace(c)
		}
		return out
	}
	seen := make(map[string]bool)
	var headers []string
	for _, row := range ds.Rows {
		for k := range row {
			k = strings.TrimSpace(k)
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)
	return headers
}
