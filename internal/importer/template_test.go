package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplate(t *testing.T) {
	doc := `
column_map:
  Maker: brand
  Price (USD): ask_price_usd
availability_map:
  Y: in_stock
default_availability: unknown
`
	tpl, err := LoadTemplate(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "ask_price_usd", tpl.ColumnMap["Price (USD)"])
	assert.Equal(t, "in_stock", tpl.AvailabilityMap["Y"])
	assert.Equal(t, "unknown", tpl.DefaultAvailability)
}

func TestLoadTemplate_Empty(t *testing.T) {
	tpl, err := LoadTemplate(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tpl.ColumnMap)
}

func TestLoadTemplate_UnknownField(t *testing.T) {
	_, err := LoadTemplate(strings.NewReader("column_map:\n  Price: price\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `maps to unknown field "price"`)
}

func TestLoadTemplate_Malformed(t *testing.T) {
	_, err := LoadTemplate(strings.NewReader("column_map: [a, b"))
	assert.ErrorContains(t, err, "failed to decode import template")
}
