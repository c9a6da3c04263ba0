package shared

import (
	"github.com/shopspring/decimal"
)

// CurrencyEUR is the only currency the inventory books are kept in.
const CurrencyEUR = "EUR"

// CurrencyUSD is the currency supplier price lists are usually quoted in.
const CurrencyUSD = "USD"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
