package app

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"fuel-receipts/internal/alerting"
	"fuel-receipts/internal/config"
	"fuel-receipts/internal/fetcher"
	"fuel-receipts/internal/httpapi"
	"fuel-receipts/internal/metrics"
	"fuel-receipts/internal/pricing"
	"fuel-receipts/internal/scheduler"
	"fuel-receipts/internal/service"
	"fuel-receipts/internal/storage"
	"fuel-receipts/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() fetcher.HistoricalPriceFetcher {
	userAgent := a.Config.Provider.UserAgent
	if strings.TrimSpace(userAgent) == "" {
		userAgent = version.UserAgent()
	}
	return fetcher.NewIndianAPI(fetcher.IndianAPIOptions{
		BaseURL:        a.Config.Provider.BaseURL,
		HistoricalPath: a.Config.Provider.HistoricalPath,
		Timeout:        a.Config.Provider.RequestTimeout,
		UserAgent:      userAgent,
	}, a.Logger)
}

func (a *App) newBuilder() *pricing.Builder {
	return pricing.NewBuilder(a.newFetcher(), pricing.BuilderOptions{
		LookbackDays: a.Config.Provider.LookbackDays,
		Timeout:      a.Config.Provider.RequestTimeout,
		FallbackRate: a.Config.Generation.FallbackRate,
	}, a.Logger)
}

func (a *App) newService(store *storage.Store, m *metrics.Metrics) *service.Service {
	var archive storage.PriceArchive
	if store != nil {
		archive = store
	}
	gen := a.Config.Generation
	return service.New(a.newBuilder(), archive, m, service.Options{
		Defaults: service.Defaults{
			MonthlyCap: gen.MonthlyCap,
			MinAmount:  gen.MinAmount,
			MaxAmount:  gen.MaxAmount,
			Location:   gen.Location,
			TelNo:      gen.TelNo,
		},
		MaxAttempts:     gen.MaxAttempts,
		Catalog:         a.Config.Catalog(),
		SyncConcurrency: a.Config.Archive.Concurrency,
		LockKey:         a.Config.Archive.AdvisoryLockKey,
		Notifier:        a.newNotifier(),
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	cfg := a.Config.Archive.Telegram
	if !cfg.Enabled {
		return nil
	}
	return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, nil, nil
	}
	return store, store.Close, nil
}

// Serve runs the HTTP API and, when enabled, the periodic price archive sync.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; price archive disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	m := metrics.New()
	svc := a.newService(store, m)

	router := httpapi.NewRouter(svc, m, a.Config.Server.Mode, a.Logger)
	server := httpapi.NewServer(router, httpapi.Options{
		Addr:            a.Config.Server.Addr,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
	}, a.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })

	if a.Config.Archive.Enabled && store != nil {
		sched := scheduler.New(scheduler.Options{
			Name:           "price_archive",
			Interval:       a.Config.Archive.Interval,
			StartupDelay:   a.Config.Archive.StartupDelay,
			RunImmediately: true,
		}, a.Logger)
		g.Go(func() error {
			return sched.Run(gctx, func(ctx context.Context, runAt time.Time) error {
				_, err := svc.SyncArchive(ctx, a.Config.Archive.APIKey, a.Config.Archive.Locations)
				return err
			})
		})
	}

	a.Logger.Info().Str("addr", a.Config.Server.Addr).Msg("starting fuel receipts service")
	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("fuel receipts service stopped")
	return nil
}

// GenerateOptions configure a one-off generation from the CLI.
type GenerateOptions struct {
	Request  service.GenerateRequest
	JSONPath string
	CSVPath  string
	XLSXPath string
	PDFPath  string
	PNGPath  string
}

// ExportOptions hold parameters for exporting archived prices.
type ExportOptions struct {
	Location  string
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the prices show command.
type ShowOptions struct {
	Location string
	Limit    int
}

// SyncOptions configure a one-off archive refresh.
type SyncOptions struct {
	Locations []string
	APIKey    string
}
