package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/resale-ops/internal/domain/activity"
)

// TxRunner runs fn with a nil transaction and returns its error, counting
// how often it was used.
type TxRunner struct {
	Calls int
}

func (r *TxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	r.Calls++
	return fn(nil)
}

type Recorder struct {
	mock.Mock
}

func (m *Recorder) Record(ctx context.Context, tx pgx.Tx, event *activity.Event) error {
	return m.Called(ctx, tx, event).Error(0)
}
