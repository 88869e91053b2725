package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"rechnung-backend/internal/archive"
	"rechnung-backend/internal/auth"
	"rechnung-backend/internal/cache"
	"rechnung-backend/internal/config"
	"rechnung-backend/internal/database"
	"rechnung-backend/internal/db"
	"rechnung-backend/internal/handlers"
	"rechnung-backend/internal/health"
	httpx "rechnung-backend/internal/http"
	"rechnung-backend/internal/logger"
	"rechnung-backend/internal/middleware"
	"rechnung-backend/internal/pdf"
	"rechnung-backend/internal/repositories"
	"rechnung-backend/internal/services"
	"rechnung-backend/migrations"
)

func main() {
	cfg := config.Load()
	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool, migrations.FS)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	redisCache := cache.New(cfg)
	defer redisCache.Close()

	var archiver services.PDFArchiver
	if a, err := archive.New(cfg); err != nil {
		log.Warn().Err(err).Msg("pdf archive setup failed, archiving disabled")
	} else if a != nil {
		archiver = a
	}

	jwtManager := auth.NewJWTManager(cfg)

	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	settingsRepo := repositories.NewSettingsRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)

	userSvc := services.NewUserService(userRepo, jwtManager)
	customerSvc := services.NewCustomerService(customerRepo)
	settingsSvc := services.NewSettingsService(settingsRepo, redisCache)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, customerRepo, settingsRepo, redisCache, pdf.NewGenerator(), archiver)
	dashboardSvc := services.NewDashboardService(invoiceRepo, customerRepo)

	router := httpx.NewRouter(httpx.Handlers{
		Auth:      handlers.NewAuthHandler(userSvc),
		Customers: handlers.NewCustomerHandler(customerSvc),
		Invoices:  handlers.NewInvoiceHandler(invoiceSvc),
		Settings:  handlers.NewSettingsHandler(settingsSvc),
		Dashboard: handlers.NewDashboardHandler(dashboardSvc),
		Health:    health.NewHandler(pool),
	}, middleware.NewAuthMiddleware(jwtManager, userRepo))

	handler := middleware.PanicRecovery(
		middleware.RequestLogging(
			middleware.CORS(cfg)(router)))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
