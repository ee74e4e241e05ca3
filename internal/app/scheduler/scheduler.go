// Package scheduler содержит приложение планировщика периодических задач.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/bizplan/internal/config"
	"github.com/magabrotheeeer/bizplan/internal/lib/fieldcrypt"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	contactservice "github.com/magabrotheeeer/bizplan/internal/services/contact"
	schedulerservice "github.com/magabrotheeeer/bizplan/internal/services/scheduler"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService contactAnonymizer
	db               io.Closer
	logger           *slog.Logger
}

type contactAnonymizer interface {
	AnonymizeContacts(ctx context.Context)
}

// waitForDB ждет, пока основное приложение применит миграции.
func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := repository.CheckDatabaseReady(ctx, db); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.ValidateScheduler(); err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	cipher, err := fieldcrypt.New([]byte(cfg.Encryption.Key), fieldcrypt.PurposeContact)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init field encryption: %w", err)
	}

	contacts := contactservice.New(db, cipher, logger)
	schedulerService := schedulerservice.NewSchedulerService(
		contacts,
		cfg.Contact.Retention,
		cfg.Contact.AnonymizeEvery,
		cfg.Contact.AnonymizeBatch,
		logger,
	)

	return &App{
		schedulerService: schedulerService,
		db:               db,
		logger:           logger,
	}, nil
}

// Run запускает планировщик. Хранилище закрывается только после
// завершения текущего прохода анонимизации.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.schedulerService.AnonymizeContacts(ctx)
	}()

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	wg.Wait()

	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}

	return nil
}
