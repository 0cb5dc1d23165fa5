package backend

import (
	"context"
	"fmt"

	"finance/internal/amqp"
	applog "finance/internal/log"
	"finance/internal/services"
	"finance/internal/storage"
	"finance/internal/storage/boltdb"
	"finance/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory logs through logger, or through the slog default when nil.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend opens the store selected by config, initializes its schema
// and wraps it in a FinanceService. AMQP failures only disable publishing.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.openRepository(config)
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("initialize %s backend: %w", config.Type, err)
	}

	var publisher services.Publisher
	if config.AMQPURL != "" {
		amqpLog := f.logger.WithComponent(applog.ComponentAMQP)
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, config.AMQPPrefetch)
		if err != nil {
			amqpLog.Warn("Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
		} else {
			amqpLog.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			publisher = client
		}
	}

	service := services.NewFinanceService(repo, publisher)

	f.logger.Info("Initialized backend",
		applog.FieldOperation, applog.OpStartup,
		"type", config.Type,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Repository: repo,
		Service:    service,
		Cleanup:    service.Close,
	}, nil
}

func (f *DefaultFactory) openRepository(config Config) (storage.Repository, error) {
	log := f.logger.WithComponent(applog.ComponentStorage)
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		log.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		log.Info("Opened Postgres store")
		return repo, nil
	case BoltBackend:
		repo, err := boltdb.Open(config.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize bolt repository: %w", err)
		}
		log.Info("Opened bolt store", "db_path", config.BoltDBPath)
		return repo, nil
	case MemoryBackend:
		log.Info("Opened memory store")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
