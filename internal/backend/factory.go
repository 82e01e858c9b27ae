package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// newPublisher is swapped in tests.
	newPublisher func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger, newPublisher: amqp.NewClient}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend opens the store and, when configured, the AMQP publisher. A
// broker that cannot be reached is logged and the backend runs without
// events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch {
	case config.Type.IsSQL():
		store, err = f.createSQLStore(ctx, config)
	case config.Type == MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: store}
	cleanups := []CleanupFunc{store.Close}

	if config.AMQPURL != "" {
		client, err := f.newPublisher(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
			result.Publisher = client
			cleanups = append(cleanups, client.Close)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}
	return result, nil
}

func (f *DefaultFactory) createSQLStore(ctx context.Context, config Config) (*storage.SQLStore, error) {
	dialect, err := storage.ParseDialect(config.Type.String())
	if err != nil {
		return nil, err
	}
	dsn := config.DatabaseURL
	if dialect == storage.SQLite {
		dsn = config.SQLiteDBPath
	}
	store, err := storage.OpenSQL(ctx, storage.Options{Dialect: dialect, DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", dialect, err)
	}
	f.logger.Info("Initialized SQL backend", "dialect", store.Dialect())
	return store, nil
}
