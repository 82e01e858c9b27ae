package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	ledgermem "fintrack/internal/sheets/memory"
	"fintrack/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	resyncUser := flag.Int64("resync-user", 0, "re-export every transaction of this user id and exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentExporter)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateExporter)

	// the exporter only consumes, so the store is opened without a publisher
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res := cli.InitBackend(context.Background(), logger, &storeCfg)

	if err := run(logger, cfg, res, *resyncUser); err != nil {
		logger.Error("Exporter stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Exporter shutdown complete")
}

// run owns res and closes it on every return path.
func run(logger *log.Logger, cfg *config.Config, res *backend.BackendResult, resyncUser int64) error {
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	}()

	ledger, err := openLedger(context.Background(), logger, cfg)
	if err != nil {
		return fmt.Errorf("initialize ledger: %w", err)
	}
	exporter := worker.NewExportWorker(res.Store, ledger, logger, cfg.ExportBatchSize)

	if resyncUser > 0 {
		n, err := exporter.ResyncOwner(context.Background(), resyncUser)
		if err != nil {
			return fmt.Errorf("resync user %d after %d rows: %w", resyncUser, n, err)
		}
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, cfg.ExportBatchSize, exporter.HandleEvent)
	})
	g.Go(func() error {
		<-gctx.Done()
		return client.Close()
	})

	logger.Info("Starting fintrack exporter", "queue", cfg.AMQPQueue, "spreadsheet", cfg.GoogleSpreadsheetID != "")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	cli.WaitForShutdown(ctx, done)
	return nil
}

// openLedger prefers the Google spreadsheet and falls back to an in-process
// ledger, which only makes sense for local runs.
func openLedger(ctx context.Context, logger *log.Logger, cfg *config.Config) (sheets.LedgerWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exporting to an in-memory ledger")
		return ledgermem.New(), nil
	}
	return gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
}
