package cli

import (
	"context"
	"errors"

	appcatalog "github.com/erp/adminpanel/internal/application/catalog"
	appidentity "github.com/erp/adminpanel/internal/application/identity"
	"github.com/erp/adminpanel/internal/application/report"
	appshared "github.com/erp/adminpanel/internal/application/shared"
	"github.com/erp/adminpanel/internal/infrastructure/api"
	"github.com/erp/adminpanel/internal/infrastructure/cache"
	"github.com/erp/adminpanel/internal/infrastructure/config"
	"github.com/erp/adminpanel/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/erp/adminpanel"

// App wires the services one adminctl invocation needs
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Cache     *cache.QueryCache
	Users     *appidentity.UserService
	Products  *appcatalog.ProductService
	Dashboard *report.DashboardService

	tracer *telemetry.TracerProvider
	meter  *telemetry.MeterProvider
	logs   *telemetry.LoggerProvider
}

// NewApp builds the telemetry providers, REST client, query cache and
// services for cfg. logger is bridged to the OTLP log pipeline when
// telemetry is enabled, and the bridged logger is the one App exposes.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, notifier appshared.Notifier) (*App, error) {
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, logger)
	if err != nil {
		return nil, err
	}
	logger = lp.Bridge(logger, cfg.Telemetry.ServiceName)

	tp, err := telemetry.NewTracerProvider(ctx, telemetryCfg, logger)
	if err != nil {
		_ = lp.Shutdown(ctx)
		return nil, err
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetryCfg, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = lp.Shutdown(ctx)
		return nil, err
	}
	shutdown := func() {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		_ = lp.Shutdown(ctx)
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithLogger(logger.Named("api")),
		api.WithTracer(tp.Tracer(instrumentationName)),
		api.WithMeter(mp.Meter(instrumentationName)),
	)
	if err != nil {
		shutdown()
		return nil, err
	}

	qc, err := cache.NewQueryCache(
		cache.WithLogger(logger.Named("cache")),
		cache.WithMeter(mp.Meter(instrumentationName)),
	)
	if err != nil {
		shutdown()
		return nil, err
	}

	users := appidentity.NewUserService(api.NewUsers(client), qc, notifier, logger.Named("users"))
	products := appcatalog.NewProductService(api.NewProducts(client), qc, notifier, logger.Named("products"))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Cache:     qc,
		Users:     users,
		Products:  products,
		Dashboard: report.NewDashboardService(users, products, logger.Named("dashboard")),
		tracer:    tp,
		meter:     mp,
		logs:      lp,
	}, nil
}

// Close closes the cache and flushes telemetry, logs last
func (a *App) Close(ctx context.Context) error {
	return errors.Join(
		a.Cache.Close(),
		a.tracer.Shutdown(ctx),
		a.meter.Shutdown(ctx),
		a.logs.Shutdown(ctx),
	)
}
