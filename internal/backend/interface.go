package backend

import (
	"context"

	"finance/internal/services"
	"finance/internal/storage"
)

// CleanupFunc releases the resources held by a backend
type CleanupFunc func() error

// BackendResult bundles the opened store, the service over it and the
// function that closes both.
type BackendResult struct {
	Repository storage.Repository
	Service    *services.FinanceService
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	PostgresURL  string
	BoltDBPath   string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	AMQPPrefetch int
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	BoltBackend     BackendType = "bolt"
	MemoryBackend   BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, BoltBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
