// Package backend builds the store, and optionally the event publisher, the
// processes run on.
package backend

import (
	"context"
	"slices"

	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// CleanupFunc releases what a backend opened.
type CleanupFunc func() error

// BackendResult contains the store and, when AMQP is configured, the change
// event publisher. Cleanup closes both.
type BackendResult struct {
	Store     storage.Store
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLiteDBPath is used by the sqlite backend, DatabaseURL by mysql and
	// postgres.
	SQLiteDBPath string
	DatabaseURL  string

	// AMQP is optional; an empty URL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	MySQLBackend    BackendType = "mysql"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}

// IsSQL reports whether the backend goes through database/sql.
func (bt BackendType) IsSQL() bool {
	return bt == SQLiteBackend || bt == MySQLBackend || bt == PostgresBackend
}
