// Package worker runs queued supplier imports and relays the activity outbox
// into the feed read model.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/resale-ops/internal/config"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/outbox"
	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/platform/messaging/consumers"
	"github.com/resale-ops/internal/platform/messaging/producers"
	"github.com/resale-ops/internal/platform/storage"
	"github.com/resale-ops/internal/worker/consumer"
	"github.com/resale-ops/internal/worker/outbox_poller"
	"github.com/resale-ops/internal/worker/service"
)

// Deps are the collaborators a Worker is built from. Consumer may be nil to
// run only the outbox relay. DLQ may be nil.
type Deps struct {
	Runner   importer.Runner
	Jobs     job.Repository
	Outbox   outbox.Repository
	Feed     activity.FeedRepository
	Store    storage.ObjectStore
	Consumer consumers.Consumer
	DLQ      producers.DeadLetterPublisher
}

// Worker owns the import consumer, its pool and the outbox poller.
type Worker struct {
	cfg      *config.Config
	logger   *slog.Logger
	consumer consumers.Consumer
	handler  *consumer.ImportEventHandler
	pool     *service.WorkerPoolImportService
	poller   *outbox_poller.Poller
	stopOnce sync.Once
}

func New(logger *slog.Logger, cfg *config.Config, deps Deps) (*Worker, error) {
	w := &Worker{
		cfg:      cfg,
		logger:   logger,
		consumer: deps.Consumer,
		poller: outbox_poller.NewPoller(
			&cfg.Outbox,
			deps.Outbox,
			outbox_poller.NewFeedPublisher(deps.Outbox, deps.Feed, logger),
			logger,
		),
	}

	if deps.Consumer != nil {
		base := service.NewImportService(deps.Runner, deps.Store, deps.Jobs, logger)
		pool, err := service.NewWorkerPoolImportService(base, service.WorkerPoolConfig{
			Size:           cfg.WorkerPool.Size,
			ReleaseTimeout: cfg.Server.ShutdownTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create worker pool: %w", err)
		}
		w.pool = pool
		w.handler = consumer.NewImportEventHandler(logger, pool, deps.DLQ)
	}
	return w, nil
}

// Run subscribes the import consumer and polls the outbox until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if w.consumer != nil {
		w.logger.Info("Starting Kafka consumer",
			"topic", w.cfg.Kafka.ImportTopic,
			"group", w.cfg.Kafka.ConsumerGroup,
		)
		if err := w.consumer.Subscribe(ctx, w.cfg.Kafka.ImportTopic, w.cfg.Kafka.ConsumerGroup, w.handler.HandleMessage); err != nil {
			return fmt.Errorf("kafka consumer error: %w", err)
		}
	}

	w.poller.Start(ctx)
	return nil
}

// Shutdown stops the consumer and drains the pool. It is safe to call more
// than once.
func (w *Worker) Shutdown() error {
	var err error
	w.stopOnce.Do(func() {
		var errs []error
		if w.consumer != nil {
			if cerr := w.consumer.Close(); cerr != nil {
				errs = append(errs, fmt.Errorf("closing kafka consumer: %w", cerr))
			}
		}
		if w.pool != nil {
			w.pool.Shutdown()
		}
		err = errors.Join(errs...)
	})
	return err
}
