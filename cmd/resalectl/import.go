package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/resale-ops/internal/audit"
	"github.com/resale-ops/internal/config"
	"github.com/resale-ops/internal/data/postgres"
	"github.com/resale-ops/internal/domain/supplier"
	"github.com/resale-ops/internal/importer"
	"github.com/resale-ops/internal/logger"
	"github.com/resale-ops/internal/platform/lock"
	"github.com/resale-ops/internal/platform/persistence"
)

type importOptions struct {
	supplierID   string
	file         string
	templateFile string
	rate         string
	organisation string
	actor        string
	noJob        bool
	noActivity   bool
	noLock       bool
}

func importCmd() *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a supplier CSV or XLSX file directly into the database",
		Long: `Import a supplier file without going through the API.

Examples:
  resalectl import --supplier 3f0c... --file stock.xlsx
  resalectl import --supplier 3f0c... --file stock.csv --template maker.yaml --rate 0.91`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runImport(ctx, cmd, opts, req)
		},
	}

	cmd.Flags().StringVar(&opts.supplierID, "supplier", "", "supplier id")
	cmd.Flags().StringVar(&opts.file, "file", "", "CSV or XLSX file to import")
	cmd.Flags().StringVar(&opts.templateFile, "template", "", "YAML import template overriding the supplier's stored one")
	cmd.Flags().StringVar(&opts.rate, "rate", "", "USD to EUR exchange rate, defaults to IMPORT_DEFAULT_EXCHANGE_RATE")
	cmd.Flags().StringVar(&opts.organisation, "org", "", "organisation id, defaults to INVENTORY_DEFAULT_ORGANISATION_ID")
	cmd.Flags().StringVar(&opts.actor, "actor", "resalectl", "actor recorded on the activity event")
	cmd.Flags().BoolVar(&opts.noJob, "no-job", false, "do not record a system job for the run")
	cmd.Flags().BoolVar(&opts.noActivity, "no-activity", false, "do not record an activity event")
	cmd.Flags().BoolVar(&opts.noLock, "no-lock", false, "skip the per-supplier import lock")
	_ = cmd.MarkFlagRequired("supplier")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// request builds the import request from the flags. Config dependent
// defaults are filled in by runImport.
func (o *importOptions) request() (importer.Request, error) {
	supplierID, err := uuid.Parse(o.supplierID)
	if err != nil {
		return importer.Request{}, fmt.Errorf("invalid supplier id %q: %w", o.supplierID, err)
	}

	data, err := os.ReadFile(o.file)
	if err != nil {
		return importer.Request{}, fmt.Errorf("failed to read %s: %w", o.file, err)
	}

	req := importer.Request{
		OrganisationID: o.organisation,
		SupplierID:     supplierID,
		Filename:       filepath.Base(o.file),
		Data:           data,
		RecordJob:      !o.noJob,
		RecordActivity: !o.noActivity,
		Actor:          o.actor,
	}

	if o.rate != "" {
		rate, err := decimal.NewFromString(o.rate)
		if err != nil || !rate.IsPositive() {
			return importer.Request{}, fmt.Errorf("rate must be a positive number, got %q", o.rate)
		}
		req.ExchangeRate = rate
	}

	if o.templateFile != "" {
		t, err := readTemplate(o.templateFile)
		if err != nil {
			return importer.Request{}, err
		}
		req.Template = &t
	}
	return req, nil
}

func readTemplate(path string) (supplier.ImportTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return supplier.ImportTemplate{}, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	defer f.Close()
	return importer.LoadTemplate(f)
}

func runImport(ctx context.Context, cmd *cobra.Command, opts *importOptions, req importer.Request) error {
	cfg, err := config.LoadConfig(configName)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg)

	if req.OrganisationID == "" {
		req.OrganisationID = cfg.Inventory.DefaultOrganisationID
	}

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer postgresDB.Close()

	var locker lock.Locker = lock.NopLocker{}
	if !opts.noLock {
		redisLocker, closeLocker, err := lock.NewLockerFromConfig(ctx, log, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer closeLocker()
		locker = redisLocker
	}

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	pipeline := importer.NewPipeline(
		postgres.NewSupplierRepository(log, postgresDB),
		postgres.NewSupplierItemRepository(log, postgresDB),
		postgres.NewJobRepository(log, postgresDB),
		audit.NewRecorder(postgres.NewActivityRepository(log, postgresDB), outboxRepo, log),
		postgresDB,
		locker,
		importer.Config{
			LockTTL:             cfg.Redis.LockTTL,
			DefaultExchangeRate: cfg.Import.DefaultExchangeRate,
			SkipLock:            opts.noLock,
		},
		log,
	)

	result, err := pipeline.Run(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
