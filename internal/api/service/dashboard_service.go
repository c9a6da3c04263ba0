package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/resale-ops/internal/api/middleware"
	"github.com/resale-ops/internal/config"
	"github.com/resale-ops/internal/domain/activity"
	"github.com/resale-ops/internal/domain/buyinglist"
	"github.com/resale-ops/internal/domain/job"
	"github.com/resale-ops/internal/domain/ledger"
	"github.com/resale-ops/internal/domain/outbox"
	"github.com/resale-ops/internal/domain/product"
	"github.com/resale-ops/internal/domain/shared"
	"github.com/resale-ops/internal/domain/sourcing"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
	defaultProfitMonths  = 6
	maxProfitMonths      = 36
	statusPingTimeout    = 2 * time.Second
)

// ProviderInfo exposes the AI routing configuration for the status view.
type ProviderInfo interface {
	Mode() string
	ConfiguredProviders() []string
}

// DashboardDeps groups the dashboard's read sources.
type DashboardDeps struct {
	Products     product.Repository
	BuyingList   buyinglist.Repository
	Transactions ledger.Repository
	Sourcing     sourcing.Repository
	Jobs         job.Repository
	Outbox       outbox.Repository
	Activity     activity.Repository
	Feed         activity.FeedRepository
	Postgres     Pinger
	Mongo        Pinger
	AI           ProviderInfo
	Errors       *middleware.ErrorTracker
}

// DashboardServiceImpl implements the DashboardService interface
type DashboardServiceImpl struct {
	deps      DashboardDeps
	cfg       config.InventoryConfig
	startedAt time.Time
	now       func() time.Time
	logger    *slog.Logger
}

func NewDashboardService(logger *slog.Logger, cfg config.InventoryConfig, deps DashboardDeps) DashboardService {
	return &DashboardServiceImpl{
		deps:      deps,
		cfg:       cfg,
		startedAt: time.Now().UTC(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// KPIs gathers the headline figures. The sources are read concurrently and
// the first failure cancels the rest.
func (s *DashboardServiceImpl) KPIs(ctx context.Context) (*KPIs, error) {
	org := organisationOf(ctx, s.cfg.DefaultOrganisationID)
	kpis := &KPIs{LowStockThreshold: s.cfg.LowStockThreshold}

	var (
		products []*product.Product
		items    []*buyinglist.Item
		totals   map[ledger.Type]decimal.Decimal
		open     int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.deps.Products.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.deps.BuyingList.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = s.deps.Transactions.SumByType(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = s.deps.Sourcing.CountOpen(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute dashboard KPIs", "error", err)
		return nil, err
	}

	// Low stock counts matching brand/model groups whose in-stock units are
	// at or below the threshold.
	stock := make(map[string]int)
	for _, p := range products {
		if !inOrganisation(p.OrganisationID, org) || p.Status != product.StatusInStock {
			continue
		}
		kpis.InventoryUnits += p.Quantity
		kpis.InventoryValueEUR = kpis.InventoryValueEUR.Add(p.CostPriceEUR.Mul(decimal.NewFromInt(int64(p.Quantity))))
		stock[p.Brand+"\x00"+p.Model] += p.Quantity
	}
	for _, units := range stock {
		if units <= s.cfg.LowStockThreshold {
			kpis.LowStockCount++
		}
	}

	for _, item := range items {
		if !inOrganisation(item.OrganisationID, org) {
			continue
		}
		if item.Status == buyinglist.StatusPending || item.Status == buyinglist.StatusOrdered {
			kpis.PendingBuyingCount++
			kpis.PendingBuyingEUR = kpis.PendingBuyingEUR.Add(item.TargetBuyPriceEUR)
		}
	}

	kpis.RevenueEUR = totals[ledger.TypeSale]
	kpis.SpendEUR = totals[ledger.TypePurchase]
	kpis.GrossProfitEUR = kpis.RevenueEUR.Sub(kpis.SpendEUR).Add(totals[ledger.TypeAdjustment])
	kpis.InventoryValueEUR = shared.RoundMoney(kpis.InventoryValueEUR)
	kpis.OpenSourcingRequests = open
	return kpis, nil
}

// Activity returns the newest feed entries. When the feed store is
// unavailable the events are read from Postgres instead.
func (s *DashboardServiceImpl) Activity(ctx context.Context, limit int) ([]*activity.FeedEntry, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	org := organisationOf(ctx, s.cfg.DefaultOrganisationID)

	if s.deps.Feed != nil {
		entries, err := s.deps.Feed.Recent(ctx, org, limit)
		if err == nil {
			return entries, nil
		}
		s.logger.Warn("Activity feed unavailable, reading events from postgres", "error", err)
	}

	events, err := s.deps.Activity.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]*activity.FeedEntry, 0, len(events))
	for _, e := range events {
		if !inOrganisation(e.OrganisationID, org) {
			continue
		}
		entry, err := e.ToFeedEntry()
		if err != nil {
			s.logger.Warn("Skipping activity event with unreadable payload", "event_id", e.ID.String(), "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Status reports the health of the backing services. Failing dependencies
// are reported in the result, not returned as an error.
func (s *DashboardServiceImpl) Status(ctx context.Context) (*SystemStatus, error) {
	status := &SystemStatus{
		AIProviders:   []string{},
		Jobs:          map[job.Status]int{},
		Outbox:        map[shared.OutboxStatus]int{},
		StartedAt:     s.startedAt,
		UptimeSeconds: int64(s.now().Sub(s.startedAt).Seconds()),
	}
	if s.deps.AI != nil {
		status.AIMode = s.deps.AI.Mode()
		if providers := s.deps.AI.ConfiguredProviders(); providers != nil {
			status.AIProviders = providers
		}
	}
	if s.deps.Errors != nil {
		status.Errors = s.deps.Errors.Snapshot()
	}

	var g errgroup.Group
	g.Go(func() error {
		status.Postgres = ping(ctx, s.deps.Postgres)
		return nil
	})
	g.Go(func() error {
		status.MongoDB = ping(ctx, s.deps.Mongo)
		return nil
	})
	g.Go(func() error {
		counts, err := s.deps.Jobs.CountByStatus(ctx)
		if err != nil {
			s.logger.Warn("Failed to count jobs for status", "error", err)
			return nil
		}
		status.Jobs = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.deps.Outbox.CountByStatus(ctx)
		if err != nil {
			s.logger.Warn("Failed to count outbox messages for status", "error", err)
			return nil
		}
		status.Outbox = counts
		return nil
	})
	_ = g.Wait()

	return status, nil
}

func ping(ctx context.Context, p Pinger) ProviderStatus {
	if p == nil {
		return ProviderStatus{Error: "not configured"}
	}
	pctx, cancel := context.WithTimeout(ctx, statusPingTimeout)
	defer cancel()
	if err := p.Ping(pctx); err != nil {
		return ProviderStatus{Error: err.Error()}
	}
	return ProviderStatus{Healthy: true}
}

// ProfitSummary returns revenue, spend and gross profit per month for the
// last months calendar months, including the current one. Months without
// transactions are reported as zero.
func (s *DashboardServiceImpl) ProfitSummary(ctx context.Context, months int) (*ProfitSummary, error) {
	if months <= 0 {
		months = defaultProfitMonths
	}
	if months > maxProfitMonths {
		months = maxProfitMonths
	}

	now := s.now()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	totals, err := s.deps.Transactions.MonthlyTotals(ctx, firstMonth)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[string]ledger.MonthlyTotals, len(totals))
	for _, t := range totals {
		byMonth[t.Month.UTC().Format("2006-01")] = t
	}

	summary := &ProfitSummary{Months: make([]MonthlyProfit, 0, months)}
	for i := 0; i < months; i++ {
		key := firstMonth.AddDate(0, i, 0).Format("2006-01")
		t := byMonth[key]
		row := MonthlyProfit{
			Month:          key,
			RevenueEUR:     t.Revenue,
			SpendEUR:       t.Spend,
			GrossProfitEUR: t.Revenue.Sub(t.Spend),
		}
		summary.Months = append(summary.Months, row)
		summary.RevenueEUR = summary.RevenueEUR.Add(row.RevenueEUR)
		summary.SpendEUR = summary.SpendEUR.Add(row.SpendEUR)
	}
	summary.GrossProfitEUR = summary.RevenueEUR.Sub(summary.SpendEUR)
	return summary, nil
}
