package matchapp

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ZoeWilliams/donationswap/internal/config"
	"github.com/ZoeWilliams/donationswap/internal/infra/httpclient"
	"github.com/ZoeWilliams/donationswap/internal/infra/logger"
	"github.com/ZoeWilliams/donationswap/internal/infra/mailer"
	"github.com/ZoeWilliams/donationswap/internal/jobs/cleanup"
	pgrepo "github.com/ZoeWilliams/donationswap/internal/repo/postgres"
	redrepo "github.com/ZoeWilliams/donationswap/internal/repo/redis"
	currencysvc "github.com/ZoeWilliams/donationswap/internal/services/currency"
	"github.com/ZoeWilliams/donationswap/internal/services/matching"
	"github.com/ZoeWilliams/donationswap/internal/services/matchmaking"
	notifysvc "github.com/ZoeWilliams/donationswap/internal/services/notify"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	matchmaker *matchmaking.Service
	cleanupJob *cleanup.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("init postgres for matchmaker: %w", err)
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	offerRepo := pgrepo.NewOfferRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	charityRepo := pgrepo.NewCharityRepo(pool)
	countryRepo := pgrepo.NewCountryRepo(pool)
	ratesCache := redrepo.NewRatesRepo(redisClient, cfg.Currency.CacheTTL)

	fixer, err := currencysvc.NewFixerClient(cfg.Currency.BaseURL, cfg.Currency.APIKey, httpclient.New(cfg.Currency.Timeout))
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init rates client: %w", err)
	}
	converter := currencysvc.NewService(currencysvc.Dependencies{
		Source: fixer,
		Cache:  ratesCache,
		Logger: logger,
	})

	smtp, err := mailer.NewSMTP(mailer.Config{
		Host:          cfg.SMTP.Host,
		Port:          cfg.SMTP.Port,
		Username:      cfg.SMTP.Username,
		Password:      cfg.SMTP.Password,
		SenderName:    cfg.SMTP.SenderName,
		SenderAddress: cfg.SMTP.SenderAddress,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	notifier, err := notifysvc.NewService(notifysvc.Dependencies{
		Mailer:    smtp,
		Converter: converter,
		Charities: charityRepo,
		Countries: countryRepo,
		Logger:    logger,
	})
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init notifier: %w", err)
	}

	dryRun := !cfg.Matchmaker.Commit
	matchmaker := matchmaking.NewService(matchmaking.Dependencies{
		Offers:   offerRepo,
		Matches:  matchRepo,
		Notifier: notifier,
		Pairer:   matching.NewEngine(logger),
		Logger:   logger,
	}, dryRun)
	cleanupJob := cleanup.New(offerRepo, matchRepo, dryRun, logger)

	return &App{
		cfg:        cfg,
		logger:     logger,
		postgres:   pool,
		redis:      redisClient,
		matchmaker: matchmaker,
		cleanupJob: cleanupJob,
	}, nil
}

// RunOnce executes one full pass: sweep dead records, pair eligible
// offers, propose the pairs, finalize agreed matches.
func (a *App) RunOnce(ctx context.Context) error {
	log := logger.WithRunID(a.logger)
	log.Info("matchmaker run started", zap.Bool("dry_run", !a.cfg.Matchmaker.Commit))

	if err := a.cleanupJob.Run(ctx); err != nil {
		return fmt.Errorf("cleanup sweep: %w", err)
	}

	pairs, err := a.matchmaker.FindPairs(ctx)
	if err != nil {
		return fmt.Errorf("find pairs: %w", err)
	}
	if err := a.matchmaker.Propose(ctx, pairs); err != nil {
		return fmt.Errorf("propose matches: %w", err)
	}
	if err := a.matchmaker.Finalize(ctx); err != nil {
		return fmt.Errorf("finalize matches: %w", err)
	}

	log.Info("matchmaker run finished")
	return nil
}

// Run executes RunOnce on the configured interval. A zero interval
// means a single pass, the batch mode cron jobs use.
func (a *App) Run(ctx context.Context) error {
	interval := a.cfg.Matchmaker.Interval
	if interval <= 0 {
		return a.RunOnce(ctx)
	}

	if err := a.RunOnce(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("matchmaker stopped")
			return nil
		case <-ticker.C:
			if err := a.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
