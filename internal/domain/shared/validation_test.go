package shared

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	ItemDetails{Brand: " ", Model: "Classic Flap"}.Validate(&errs)
	errs.Add("quantity", "must not be negative")

	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: brand: is required; quantity: must not be negative", err.Error())

	var target ValidationErrors
	require.True(t, errors.As(err, &target))
	assert.Len(t, target, 2)
	assert.Equal(t, "brand", target[0].Field)
}

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(map[string]decimal.Decimal{"price": decimal.RequireFromString("7500.00")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":7500}`, string(out))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "2.35", RoundMoney(decimal.RequireFromString("2.345")).StringFixed(2))
	assert.Equal(t, "-2.35", RoundMoney(decimal.RequireFromString("-2.345")).StringFixed(2))
}
