package bizplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/bizplan/internal/cache"
	"github.com/magabrotheeeer/bizplan/internal/config"
	"github.com/magabrotheeeer/bizplan/internal/http/handlers/health"
	"github.com/magabrotheeeer/bizplan/internal/lib/fieldcrypt"
	"github.com/magabrotheeeer/bizplan/internal/lib/jwt"
	"github.com/magabrotheeeer/bizplan/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
	"github.com/magabrotheeeer/bizplan/internal/migrations"
	"github.com/magabrotheeeer/bizplan/internal/paymentprovider"
	adminservice "github.com/magabrotheeeer/bizplan/internal/services/admin"
	authservice "github.com/magabrotheeeer/bizplan/internal/services/auth"
	contactservice "github.com/magabrotheeeer/bizplan/internal/services/contact"
	paymentservice "github.com/magabrotheeeer/bizplan/internal/services/payment"
	planservice "github.com/magabrotheeeer/bizplan/internal/services/plan"
	profileservice "github.com/magabrotheeeer/bizplan/internal/services/profile"
	"github.com/magabrotheeeer/bizplan/internal/storage/avatars"
	"github.com/magabrotheeeer/bizplan/internal/storage/repository"
	"github.com/magabrotheeeer/bizplan/internal/textgen"
	"github.com/streadway/amqp"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API вместе с открытыми соединениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилища и брокер, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.bizplan.New"

	if err := cfg.ValidateAPI(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, db: db, cache: cacheRedis, conn: conn, ch: ch}

	svc, err := buildServices(ctx, cfg, logger, db, cacheRedis, rabbitmq.NewPublisher(ch))
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, RouteOptions{
		Currency:       cfg.Paystack.Currency,
		PaystackPublic: cfg.Paystack.PublicKey,
		AllowedOrigins: cfg.AllowedOrigins,
		GenerateRPS:    cfg.GenerateRPS,
		GenerateBurst:  cfg.GenerateBurst,
		AvatarMaxSize:  cfg.Avatars.MaxSize,
		Health: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func buildServices(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *repository.Storage, cacheRedis *cache.Cache, publisher *rabbitmq.Publisher) (Services, error) {
	contactCipher, err := fieldcrypt.New([]byte(cfg.Encryption.Key), fieldcrypt.PurposeContact)
	if err != nil {
		return Services{}, err
	}
	paymentCipher, err := fieldcrypt.New([]byte(cfg.Encryption.Key), fieldcrypt.PurposePayment)
	if err != nil {
		return Services{}, err
	}

	var store profileservice.ObjectStore
	if cfg.Avatars.Enabled() {
		s3Store, err := avatars.New(ctx, cfg.Avatars)
		if err != nil {
			return Services{}, err
		}
		store = s3Store
	} else {
		logger.Warn("avatar storage is not configured, uploads disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	return Services{
		Auth:    authservice.New(db, jwtMaker, cfg.AdminEmail, logger),
		Payment: paymentservice.New(db, paymentprovider.NewClient(cfg.Paystack), paymentCipher, publisher, cfg.Paystack.Currency, logger),
		Plan:    planservice.New(db, textgen.NewClient(cfg.TextGen, logger), cacheRedis, publisher, logger),
		Contact: contactservice.New(db, contactCipher, logger),
		Admin:   adminservice.New(db, cacheRedis, logger),
		Gate:    adminservice.NewGate(db),
		Profile: profileservice.New(db, store, cfg.Avatars.MaxSize, logger),
	}, nil
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
