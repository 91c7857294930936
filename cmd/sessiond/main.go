package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/pgsession/pkg/config"
	"github.com/dmitrymomot/pgsession/pkg/cookie"
	"github.com/dmitrymomot/pgsession/pkg/csrf"
	"github.com/dmitrymomot/pgsession/pkg/httpserver"
	"github.com/dmitrymomot/pgsession/pkg/logger"
	"github.com/dmitrymomot/pgsession/pkg/pg"
	"github.com/dmitrymomot/pgsession/pkg/pgstore"
	"github.com/dmitrymomot/pgsession/pkg/requestid"
	"github.com/dmitrymomot/pgsession/pkg/session"
)

type appConfig struct {
	Env       string     `env:"APP_ENV" envDefault:"development"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"json"`
}

func main() {
	var (
		appCfg    appConfig
		pgCfg     pg.Config
		storeCfg  pgstore.Config
		sessCfg   session.Config
		cookieCfg cookie.Config
		csrfCfg   csrf.Config
		httpCfg   httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&storeCfg)
	config.MustLoad(&sessCfg)
	config.MustLoad(&cookieCfg)
	config.MustLoad(&csrfCfg)
	config.MustLoad(&httpCfg)

	log := logger.New(
		logger.WithLevel(appCfg.LogLevel),
		logger.WithFormat(logger.Format(appCfg.LogFormat)),
		logger.WithEnvironment(appCfg.Env, "sessiond"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, pgCfg, storeCfg, sessCfg, cookieCfg, csrfCfg, httpCfg); err != nil {
		log.ErrorContext(ctx, "sessiond stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	log *slog.Logger,
	pgCfg pg.Config,
	storeCfg pgstore.Config,
	sessCfg session.Config,
	cookieCfg cookie.Config,
	csrfCfg csrf.Config,
	httpCfg httpserver.Config,
) error {
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if pgCfg.MigrationsPath != "" {
		if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
			return err
		}
	}

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	store := pgstore.NewFromConfig(pool, storeCfg, pgstore.WithLogger(log))
	protector := csrf.New(csrfCfg, cookies,
		cookie.WithPath(sessCfg.CookiePath),
		cookie.WithDomain(sessCfg.CookieDomain),
		cookie.WithSecure(sessCfg.CookieSecure),
		cookie.WithSameSite(sessCfg.CookieSameSite.HTTP()),
	)

	manager := session.NewFromConfig(sessCfg,
		session.WithStore(store),
		session.WithCookieManager(cookies),
		session.WithCSRF(protector),
		session.WithLogger(log),
	)

	// The table may have been provisioned by migrations or a DBA; keep going.
	_ = manager.EnsureSchema(ctx)

	go manager.RunCleanup(ctx, sessCfg.CleanupInterval)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	return srv.Run(ctx, newRouter(manager, log, pg.Healthcheck(pool)))
}
