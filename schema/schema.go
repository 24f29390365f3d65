package schema

// ============================================================================
// SCHEMA — Describes the shape of a sales export for the pipeline
// ============================================================================
// Exports arrive with English or Spanish headers and status tokens depending
// on who built the sheet. Config names every logical field once and lists the
// header spellings accepted for it, plus the status vocabulary and the
// characters the normalizer strips or splits on.
// ============================================================================

// Field is a logical column of the sales export.
type Field string

const (
	FieldOrderID           Field = "order_id"
	FieldProduct           Field = "product"
	FieldQuantity          Field = "quantity"
	FieldStatus            Field = "status"
	FieldAmount            Field = "amount"
	FieldPaymentMethod     Field = "payment_method"
	FieldAttributionSource Field = "attribution_source"
)

// Fields lists every logical field in display order.
var Fields = []Field{
	FieldOrderID,
	FieldProduct,
	FieldQuantity,
	FieldStatus,
	FieldAmount,
	FieldPaymentMethod,
	FieldAttributionSource,
}

// Required reports whether a dataset must carry a column for the field.
// Quantity may be omitted because it can be read off the product label.
func (f Field) Required() bool {
	return f != FieldQuantity
}

// Config describes the complete shape of a sales export.
type Config struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Columns maps each field to the header names accepted for it.
	Columns map[Field][]string `yaml:"columns" json:"columns"`

	Status Vocabulary `yaml:"status" json:"status"`

	// CurrencySymbols are removed from amount text before parsing.
	CurrencySymbols []string `yaml:"currencySymbols" json:"currencySymbols"`

	// QuantitySeparators split a leading multiplier from a product label ("3x Widget").
	QuantitySeparators []string `yaml:"quantitySeparators" json:"quantitySeparators"`

	Display Display `yaml:"display" json:"display"`
}

// Vocabulary lists the status tokens treated as completed or refunded.
// Matching is case-insensitive; anything else is "other".
type Vocabulary struct {
	Completed []string `yaml:"completedAliases" json:"completedAliases"`
	Refunded  []string `yaml:"refundedAliases" json:"refundedAliases"`
}

// Display controls how the report renders money.
type Display struct {
	Currency string `yaml:"currency" json:"currency"` // ISO 4217 code, e.g. "COP"
	Locale   string `yaml:"locale" json:"locale"`     // BCP 47 tag, e.g. "es-CO"
}

// Default returns the configuration that accepts both the English export and
// the Spanish sheet layout ("Número de venta", "Estado", "Total", ...).
func Default() Config {
	return Config{
		Name: "Sales export",
		Columns: map[Field][]string{
			FieldOrderID:           {"Order ID", "Order Number", "Número de venta", "Numero de venta"},
			FieldProduct:           {"Product", "Producto"},
			FieldQuantity:          {"Quantity", "Qty", "Cantidad"},
			FieldStatus:            {"Status", "Estado"},
			FieldAmount:            {"Net Amount", "Net Revenue", "Total", "Amount"},
			FieldPaymentMethod:     {"Payment Method", "Método de pago", "Metodo de pago"},
			FieldAttributionSource: {"Attribution Source", "Source", "Origen"},
		},
		Status: Vocabulary{
			Completed: []string{"completed", "exitosa"},
			Refunded:  []string{"refunded", "devuelta"},
		},
		CurrencySymbols:    []string{"$", ","},
		QuantitySeparators: []string{"x", "×"},
		Display: Display{
			Currency: "COP",
			Locale:   "es-CO",
		},
	}
}

// withDefaults fills every empty section from Default().
func (c Config) withDefaults() Config {
	def := Default()
	if c.Name == "" {
		c.Name = def.Name
	}
	columns := make(map[Field][]string, len(def.Columns))
	for _, f := range Fields {
		if aliases := c.Columns[f]; len(aliases) > 0 {
			columns[f] = aliases
		} else {
			columns[f] = def.Columns[f]
		}
	}
	c.Columns = columns
	if len(c.Status.Completed) == 0 {
		c.Status.Completed = def.Status.Completed
	}
	if len(c.Status.Refunded) == 0 {
		c.Status.Refunded = def.Status.Refunded
	}
	if c.CurrencySymbols == nil {
		c.CurrencySymbols = def.CurrencySymbols
	}
	if len(c.QuantitySeparators) == 0 {
		c.QuantitySeparators = def.QuantitySeparators
	}
	if c.Display.Currency == "" {
		c.Display.Currency = def.Display.Currency
	}
	if c.Display.Locale == "" {
		c.Display.Locale = def.Display.Locale
	}
	return c
}
