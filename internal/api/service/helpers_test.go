package service

import (
	"io"
	"log/slog"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/resale-ops/internal/config"
	"github.com/shopspring/decimal"
)

const testOrg = "org-test"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testInventoryConfig() config.InventoryConfig {
	return config.InventoryConfig{
		DefaultMarkup:         decimal.RequireFromString("1.5"),
		LowStockThreshold:     2,
		DefaultOrganisationID: testOrg,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// anyArgs matches n statement placeholders whatever their values.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}
