package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/gearmarket-web/api/routes"
	"github.com/angelmondragon/gearmarket-web/internal/auth"
	"github.com/angelmondragon/gearmarket-web/internal/drafts"
	"github.com/angelmondragon/gearmarket-web/internal/gears"
	"github.com/angelmondragon/gearmarket-web/internal/uploads"
	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	"github.com/angelmondragon/gearmarket-web/pkg/auth/session"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/metrics"
	"github.com/angelmondragon/gearmarket-web/pkg/redis"
)

const (
	serviceName     = "gearmarket-web"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.App.IsProd() && !cfg.Session.CookieSecure {
		logg.Warn(context.Background(), "session cookie is not marked secure in prod")
	}

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "web server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	galleryMetrics := metrics.NewGalleryMetrics(reg)

	api, err := apiclient.New(cfg.Upstream,
		apiclient.WithMetrics(metrics.NewUpstreamMetrics(reg)),
		apiclient.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	tax, err := gears.LoadTaxonomy()
	if err != nil {
		return err
	}

	// An unset asset version falls back to the process start time.
	assetVersion := cfg.Storage.AssetVersion
	if assetVersion == "" {
		assetVersion = strconv.FormatInt(time.Now().Unix(), 10)
	}
	images := gears.ImageResolver{BaseURL: cfg.Storage.PublicBaseURL, AssetVersion: assetVersion}

	gearClient, err := gears.NewClient(api)
	if err != nil {
		return err
	}
	gearService, err := gears.NewService(gears.ServiceParams{
		API:      gearClient,
		Taxonomy: tax,
		Images:   images,
		Metrics:  galleryMetrics,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		return err
	}
	authClient, err := auth.NewClient(api)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		API:      authClient,
		Sessions: sessions,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	draftStore, err := drafts.NewStore(redisClient, cfg.Drafts)
	if err != nil {
		return err
	}
	draftService, err := drafts.NewService(drafts.ServiceParams{
		Store:    draftStore,
		Gears:    gearClient,
		Taxonomy: tax,
		Images:   images,
		Tokens:   authService,
		Limits:   uploads.Limits{MaxFiles: cfg.Uploads.MaxFiles, MaxFileBytes: cfg.Uploads.MaxFileBytes},
		Metrics:  galleryMetrics,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: routes.NewRouter(routes.Params{
			Config:         cfg,
			Logger:         logg,
			Redis:          redisClient,
			Sessions:       sessions,
			AuthService:    authService,
			GearService:    gearService,
			DraftService:   draftService,
			Gatherer:       reg,
			HTTPMetrics:    metrics.NewHTTPMetrics(reg),
			GalleryMetrics: galleryMetrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": server.Addr, "env": cfg.App.Env}), "web server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return multierr.Combine(server.Shutdown(shutdownCtx), <-serveErr)
}
