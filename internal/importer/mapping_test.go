package importer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resale-ops/internal/domain/supplier"
)

func TestUSDToEUR(t *testing.T) {
	tests := []struct {
		amount, rate, want string
	}{
		{"100", "0.9", "90"},
		{"0.05", "0.9", "0.05"},
		{"0.01", "0.5", "0.01"},
		{"12500", "0.92", "11500"},
		{"19.99", "0.925", "18.49"},
	}
	for _, tt := range tests {
		got := USDToEUR(decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.rate))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%s x %s = %s, want %s", tt.amount, tt.rate, got, tt.want)
	}
	assert.Equal(t, "90.00", USDToEUR(decimal.NewFromInt(100), decimal.RequireFromString("0.9")).StringFixed(2))
}

func TestParsePrice(t *testing.T) {
	for raw, want := range map[string]string{"$12,500.50": "12500.5", "USD 900": "900", " 45 ": "45"} {
		got, err := ParsePrice(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got.String())
	}
	for _, raw := range []string{"", "abc", "-5"} {
		_, err := ParsePrice(raw)
		assert.Error(t, err, raw)
	}
}

func TestMapper_IdentityHeaders(t *testing.T) {
	supplierID := uuid.New()
	m := NewMapper([]string{"Brand", "SKU", "Title", "Condition Rank", "Ask Price USD", "Availability"}, supplier.ImportTemplate{})

	item, err := m.MapRow(supplierID, Row{Number: 2, Values: []string{"Chanel", "CF-25", "Classic Flap", "A", "$6,000", ""}},
		decimal.RequireFromString("0.9"))
	require.NoError(t, err)

	assert.Equal(t, "Chanel", item.Brand)
	assert.Equal(t, "CF-25", item.SKU)
	assert.Equal(t, "A", item.ConditionRank)
	assert.Equal(t, "5400.00", item.AskPriceEUR.StringFixed(2))
	assert.Equal(t, "unknown", item.Availability)
	assert.Equal(t, "$6,000", item.Raw["Ask Price USD"])
	assert.Len(t, item.RowHash, 64)
}

func TestMapper_Template(t *testing.T) {
	template := supplier.ImportTemplate{
		ColumnMap:           map[string]string{"Maker": supplier.FieldBrand, "Price": supplier.FieldAskPriceUSD, "Stock": supplier.FieldAvailability},
		AvailabilityMap:     map[string]string{"Y": "in_stock", "N": "sold_out"},
		DefaultAvailability: "in_stock",
	}
	m := NewMapper([]string{"maker", "Brand", "price", "stock"}, template)

	item, err := m.MapRow(uuid.New(), Row{Number: 3, Values: []string{"Hermes", "ignored", "100", "n"}}, decimal.RequireFromString("0.9"))
	require.NoError(t, err)
	assert.Equal(t, "Hermes", item.Brand, "template mapping wins over identity match")
	assert.Equal(t, "sold_out", item.Availability)
	assert.Equal(t, "90.00", item.AskPriceEUR.StringFixed(2))
}

func TestMapper_RowErrors(t *testing.T) {
	m := NewMapper([]string{"brand", "ask_price_usd"}, supplier.ImportTemplate{})
	rate := decimal.RequireFromString("0.9")

	_, err := m.MapRow(uuid.New(), Row{Number: 5, Values: []string{"", "100"}}, rate)
	assert.Equal(t, RowError{Row: 5, Message: "brand is required"}, err)

	_, err = m.MapRow(uuid.New(), Row{Number: 6, Values: []string{"Dior"}}, rate)
	assert.EqualError(t, err, "row 6: ask_price_usd is required")

	_, err = m.MapRow(uuid.New(), Row{Number: 7, Values: []string{"Dior", "cheap"}}, rate)
	assert.EqualError(t, err, `row 7: invalid price "cheap"`)
}

func TestRowHash(t *testing.T) {
	supplierID := uuid.New()
	price := decimal.NewFromInt(100)

	a := RowHash(supplierID, "Hermes ", "B30", "Birkin", "A", price)
	b := RowHash(supplierID, "hermes", "b30", "BIRKIN", " a", decimal.RequireFromString("100.00"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, RowHash(uuid.New(), "Hermes", "B30", "Birkin", "A", price))
	assert.NotEqual(t, a, RowHash(supplierID, "Hermes", "B30", "Birkin", "A", decimal.NewFromInt(101)))
}
