package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/supplier"
)

const unknownAvailability = "unknown"

// RowError describes why a sheet row was rejected.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// USDToEUR converts at rate, rounded half away from zero to cents.
func USDToEUR(amount, rate decimal.Decimal) decimal.Decimal {
	return shared.RoundMoney(amount.Mul(rate))
}

// ParsePrice reads a USD amount, tolerating a leading "$" and thousands separators.
func ParsePrice(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(strings.ToUpper(cleaned), "USD")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("price is empty")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %q must not be negative", raw)
	}
	return d, nil
}

// RowHash identifies a row's content for a supplier.
func RowHash(supplierID uuid.UUID, brand, sku, title, condition string, price decimal.Decimal) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s", supplierID, norm(brand), norm(sku), norm(title), norm(condition), price.StringFixed(2))
	return hex.EncodeToString(h.Sum(nil))
}

// Mapper converts sheet rows into supplier items under one template.
type Mapper struct {
	headers             []string
	index               map[string]int
	availability        map[string]string
	defaultAvailability string
}

func NewMapper(headers []string, t supplier.ImportTemplate) *Mapper {
	availability := make(map[string]string, len(t.AvailabilityMap))
	for k, v := range t.AvailabilityMap {
		availability[strings.ToLower(strings.TrimSpace(k))] = v
	}
	def := t.DefaultAvailability
	if def == "" {
		def = unknownAvailability
	}
	return &Mapper{
		headers:             headers,
		index:               columnIndex(headers, t),
		availability:        availability,
		defaultAvailability: def,
	}
}

func (m *Mapper) field(row Row, name string) string {
	i, ok := m.index[name]
	if !ok {
		return ""
	}
	return row.Value(i)
}

// MapRow builds the item for row. Prices are converted with rate; the
// caller fills in the identifiers.
func (m *Mapper) MapRow(supplierID uuid.UUID, row Row, rate decimal.Decimal) (*supplier.Item, error) {
	brand := m.field(row, supplier.FieldBrand)
	if brand == "" {
		return nil, RowError{Row: row.Number, Message: "brand is required"}
	}
	rawPrice := m.field(row, supplier.FieldAskPriceUSD)
	if rawPrice == "" {
		return nil, RowError{Row: row.Number, Message: "ask_price_usd is required"}
	}
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return nil, RowError{Row: row.Number, Message: err.Error()}
	}

	availability := m.defaultAvailability
	if raw := m.field(row, supplier.FieldAvailability); raw != "" {
		availability = raw
		if mapped, ok := m.availability[strings.ToLower(raw)]; ok {
			availability = mapped
		}
	}

	raw := make(map[string]string, len(m.headers))
	for i, h := range m.headers {
		if h == "" {
			continue
		}
		raw[h] = row.Value(i)
	}

	item := &supplier.Item{
		SupplierID:    supplierID,
		Brand:         brand,
		SKU:           m.field(row, supplier.FieldSKU),
		Title:         m.field(row, supplier.FieldTitle),
		ConditionRank: m.field(row, supplier.FieldConditionRank),
		AskPriceUSD:   price,
		AskPriceEUR:   USDToEUR(price, rate),
		Availability:  availability,
		Raw:           raw,
	}
	item.RowHash = RowHash(supplierID, item.Brand, item.SKU, item.Title, item.ConditionRank, price)
	return item, nil
}
