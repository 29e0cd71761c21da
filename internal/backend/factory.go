package backend

import (
	"context"
	"fmt"

	"finvision/internal/amqp"
	"finvision/internal/config"
	"finvision/internal/ledger"
	"finvision/internal/ledger/csvfile"
	"finvision/internal/ledger/memory"
	"finvision/internal/ledger/sqlite"
	"finvision/internal/log"
	"finvision/internal/services"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// ConfigFromAppConfig picks the backend settings out of the application config.
func ConfigFromAppConfig(c *config.Config) Config {
	return Config{
		Type:         BackendType(c.DataBackend),
		LedgerFile:   c.LedgerFile,
		SQLiteDBPath: c.SQLiteDBPath,
		SeedFile:     c.SeedFile,
		AMQPURL:      c.AMQPURL,
		AMQPExchange: c.AMQPExchange,
		AMQPQueue:    c.AMQPQueue,
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	store, err := f.createStore(config)
	if err != nil {
		return nil, err
	}

	// A broker outage at startup degrades to no mirroring.
	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without mirroring", "error", err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(store, publisher, f.logger)
	return &BackendResult{Service: svc, Cleanup: svc.Close}, nil
}

func (f *DefaultFactory) createStore(config Config) (ledger.Store, error) {
	switch config.Type {
	case CSVBackend:
		store := csvfile.New(config.LedgerFile)
		f.logger.Info("Initialized CSV ledger", "path", store.Path())
		return store, nil
	case SQLiteBackend:
		store, err := sqlite.New(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite ledger: %w", err)
		}
		f.logger.Info("Initialized SQLite ledger", "db_path", config.SQLiteDBPath)
		return store, nil
	case MemoryBackend:
		store := memory.New()
		if config.SeedFile != "" {
			store = memory.NewFromFile(config.SeedFile)
		}
		f.logger.Info("Initialized memory ledger", "seed_file", config.SeedFile)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
