// Package main Business Plan Generator API
//
// @title           Business Plan Generator API
// @version         1.0
// @description     API генератора бизнес-планов: кредиты, оплата через Paystack, обращения и администрирование
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  support@bizplan.example

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/bizplan/docs" // swagger spec
	"github.com/magabrotheeeer/bizplan/internal/app/bizplan"
	"github.com/magabrotheeeer/bizplan/internal/config"
	"github.com/magabrotheeeer/bizplan/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting bizplan", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bizplan.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("bizplan stopped gracefully")
}
