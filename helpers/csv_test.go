package helpers

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/salespulse/sales"
)

var spanishCSV = []byte("\ufeffNúmero de venta,Producto,Cantidad,Método de pago,Origen,Estado,Total\n" +
	"V-1,Camiseta,2,Nequi,Instagram,Exitosa,\"$50,000\"\n" +
	"V-2,2x Gorra,,Efectivo,Tienda,Devuelta,20000\n" +
	",,,,,,\n" +
	"V-3,Medias,1,Nequi,Instagram,Pendiente\n")

func TestParseCSV(t *testing.T) {
	ds, err := ParseCSV(spanishCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"Número de venta", "Producto", "Cantidad", "Método de pago", "Origen", "Estado", "Total"}, ds.Columns)
	require.Len(t, ds.Rows, 4)
	assert.Equal(t, "$50,000", ds.Rows[0]["Total"])
	assert.Equal(t, "", ds.Rows[3]["Total"], "short rows are padded")
}

func TestParseCSVFeedsNormalizer(t *testing.T) {
	ds, err := ParseCSV(spanishCSV)
	require.NoError(t, err)

	records, err := sales.Normalize(ds)
	require.NoError(t, err)
	require.Len(t, records, 3, "blank row dropped")

	assert.Equal(t, 50000.0, records[0].NetAmount)
	assert.Equal(t, 2, records[1].Quantity)
	assert.Equal(t, "Gorra", records[1].Product)
	assert.Equal(t, sales.StatusOther, records[2].Status)
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(nil)
	assert.True(t, errors.Is(err, ErrNoHeader))
}

func TestParseCSVHeaderOnly(t *testing.T) {
	ds, err := ParseCSV([]byte("Order ID,Product\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Order ID", "Product"}, ds.Columns)
	assert.Empty(t, ds.Rows)
}

func TestParseCSVMalformedQuote(t *testing.T) {
	_, err := ParseCSV([]byte("a,b\n\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	ds, err := ParseJSON([]byte(`[
		{"order_id": 1001, "product": "2x A", "status": "completed", "amount": "$10.00", "payment_method": "card", "source": "ads"},
		{"order_id": 1002, "product": "B", "status": "refunded", "amount": 5, "payment_method": "cash", "source": "organic", "note": "late"}
	]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"amount", "order_id", "payment_method", "product", "source", "status", "note"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, json.Number("1001"), ds.Rows[0]["order_id"])

	records, err := sales.Normalize(ds)
	require.NoError(t, err)
	assert.Equal(t, "1001", records[0].OrderID)
	assert.Equal(t, 5.0, records[1].NetAmount)
}

func TestParseJSONRejectsObject(t *testing.T) {
	_, err := ParseJSON([]byte(`{"order_id": 1}`))
	assert.Error(t, err)
}

func TestParseSniffsFormat(t *testing.T) {
	ds, err := Parse([]byte(`  [{"a": "1"}]`), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ds.Columns)

	ds, err = Parse([]byte("a,b\n1,2\n"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Columns)

	ds, err = Parse([]byte(`[{"x": 1}]`), "application/json; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ds.Columns)

	_, err = Parse([]byte(`[{"x": 1}]`), "text/csv")
	assert.NoError(t, err, "a JSON-looking body parses as a one-column CSV when declared CSV")
}
