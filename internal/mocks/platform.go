package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/platform/ai"
	"github.com/resale-ops/internal/platform/lock"
)

type Locker struct {
	mock.Mock
}

func (m *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (lock.Lease, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(lock.Lease), args.Error(1)
}

type Lease struct {
	mock.Mock
}

func (m *Lease) Release(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MessagePublisher struct {
	mock.Mock
}

func (m *MessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MessagePublisher) Close() error {
	return m.Called().Error(0)
}

type DeadLetterPublisher struct {
	mock.Mock
}

func (m *DeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	return m.Called(ctx, key, originalMessageValue, reason).Error(0)
}

func (m *DeadLetterPublisher) Close() error {
	return m.Called().Error(0)
}

type ImportRunner struct {
	mock.Mock
}

func (m *ImportRunner) Run(ctx context.Context, req importer.Request) (*importer.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importer.Result), args.Error(1)
}

type AIRouter struct {
	mock.Mock
}

func (m *AIRouter) WebSearch(ctx context.Context, query string) (*ai.Response, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Response), args.Error(1)
}

func (m *AIRouter) GenerateText(ctx context.Context, prompt string) (*ai.Response, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Response), args.Error(1)
}

func (m *AIRouter) Mode() string {
	return m.Called().String(0)
}

func (m *AIRouter) ConfiguredProviders() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

type Pinger struct {
	mock.Mock
}

func (m *Pinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
