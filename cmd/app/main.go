package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promotion-platform/internal/config"
	"promotion-platform/internal/domain/model"
	"promotion-platform/internal/domain/ports/repository"
	"promotion-platform/internal/infra/api"
	pg "promotion-platform/internal/infra/db/postgres"
	"promotion-platform/internal/infra/logging"
	"promotion-platform/internal/infra/metrics"
	"promotion-platform/internal/infra/payment"
	red "promotion-platform/internal/infra/redis"
	"promotion-platform/internal/infra/sched"
	"promotion-platform/internal/infra/web"
	"promotion-platform/internal/infra/worker"
	"promotion-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	ledgerRepo := pg.NewLedgerRepo(pool)
	accountRepo := pg.NewAccountRepo(pool)
	notifRepo := pg.NewNotificationRepo(pool)
	catalogRepo := pg.NewCatalogRepo(pool)

	stores := map[model.ServiceType]repository.ContentStore{
		model.ServiceJobPosting:       pg.NewJobPostingStore(pool),
		model.ServiceSeminar:          pg.NewSeminarStore(pool),
		model.ServiceLabAdvertisement: pg.NewLabAdvertisementStore(pool),
		model.ServiceAdvertisement:    pg.NewAdvertisementStore(pool),
		model.ServiceNewProduct:       pg.NewNewProductStore(pool),
	}

	// ---- Background task pool ----
	taskPool := worker.NewPool(16, logger)
	taskPool.Start(ctx)
	defer taskPool.Stop()

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(catalogRepo, cfg.Catalog.CacheTTL, nil, logger)
	notifyUC := usecase.NewNotificationUseCase(notifRepo, accountRepo, taskPool, logger)
	contentUC := usecase.NewContentUseCase(stores, nil)

	gateway := payment.NewPortOneGateway(
		cfg.Gateway.PortOne.APIKey,
		cfg.Gateway.PortOne.APISecret,
		cfg.Gateway.PortOne.BaseURL,
		cfg.Gateway.PortOne.Sandbox,
	)

	dispatcher := usecase.NewActivationDispatcher(ledgerRepo, nil, logger)
	for st, store := range stores {
		dispatcher.Register(st, usecase.NewContentActivator(store))
	}

	paymentUC := usecase.NewPaymentUseCase(ledgerRepo, accountRepo, stores, pricingUC, gateway, notifyUC, cfg.Gateway.Currency, nil, logger)
	refundUC := usecase.NewRefundUseCase(gateway, logger)
	approvalUC := usecase.NewApprovalUseCase(ledgerRepo, pg.NewTxManager(pool), dispatcher, refundUC, notifyUC, locker, nil, logger)

	// ---- Admin web ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	adminSrv := web.NewServer(approvalUC, auth, rateLimiter, cfg.Admin.RateLimit, cfg.Admin.APIKey, logger)
	adminHTTP := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: adminSrv.Router()}
	go func() {
		logger.Info().Str("addr", adminHTTP.Addr).Msg("admin web listening")
		if err := adminHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin web server error")
		}
	}()

	// ---- Merchant API ----
	apiSrv := api.NewServer(pricingUC, contentUC, paymentUC, logger)
	apiHTTP := &http.Server{Addr: fmt.Sprintf(":%d", cfg.API.Port), Handler: apiSrv.Router()}
	go func() {
		logger.Info().Str("addr", apiHTTP.Addr).Msg("merchant api listening")
		if err := apiHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("merchant api server error")
		}
	}()

	// ---- Metrics ----
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())
	metricsHTTP := &http.Server{Addr: ":9100", Handler: metricsMux}
	go func() {
		if err := metricsHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	// ---- Schedulers ----
	reconciler := sched.NewActivationReconciler(dispatcher, ledgerRepo,
		cfg.Scheduler.ReconcileInterval, cfg.Scheduler.ReconcileStaleAfter, logger)
	go func() { _ = reconciler.Run(ctx) }()

	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval,
		cfg.Scheduler.ExpiryNoticeDays, stores, notifyUC, logger)
	go func() { _ = expiryWorker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = adminHTTP.Shutdown(shutdownCtx)
	_ = apiHTTP.Shutdown(shutdownCtx)
	_ = metricsHTTP.Shutdown(shutdownCtx)
}
