package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/GlebRadaev/tokenwallet/internal/badgecache"
	"github.com/GlebRadaev/tokenwallet/internal/config"
	"github.com/GlebRadaev/tokenwallet/internal/handlers"
	"github.com/GlebRadaev/tokenwallet/internal/mailer"
	"github.com/GlebRadaev/tokenwallet/internal/metrics"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"github.com/GlebRadaev/tokenwallet/internal/repo"
	"github.com/GlebRadaev/tokenwallet/internal/service"
	"github.com/GlebRadaev/tokenwallet/internal/service/badgeservice"
	"github.com/GlebRadaev/tokenwallet/pkg/auth"
	"github.com/GlebRadaev/tokenwallet/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg      *config.Config
	api      *handlers.Handlers
	srv      *service.Services
	repo     *repo.Repositories
	consumer *mailer.Consumer
	pool     *pgxpool.Pool
	redis    *redis.Client

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	a.cfg = cfg

	a.repo, err = a.buildRepositories(ctx)
	if err != nil {
		return err
	}

	var cache badgeservice.Cache = badgecache.NewMemory()
	if cfg.RedisAddress != "" {
		a.redis, err = getRedis(ctx, cfg)
		if err != nil {
			zap.L().Error("redis connection failed: ", zap.Error(err))
			return fmt.Errorf("can't connect to redis: %w", err)
		}
		cache = badgecache.NewRedis(a.redis)
	}

	m := metrics.New()
	dispatcher, consumer, err := mailer.New(cfg, a.redis, m)
	if err != nil {
		return fmt.Errorf("can't build mailer: %w", err)
	}
	a.consumer = consumer

	tokens := auth.NewJWTService(cfg.JWTSecret)
	a.srv = service.New(a.repo, service.Deps{
		Hasher:           &auth.HashService{},
		Tokens:           tokens,
		TokenTTL:         cfg.TokenTTL,
		BadgeCache:       cache,
		BadgeSize:        cfg.BadgeSize,
		Dispatcher:       dispatcher,
		Metrics:          m,
		ManagerMaxAmount: cfg.ManagerMaxAmount,
		ImportWorkers:    cfg.MailWorkers,
	})
	if err := a.srv.AuthService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		return fmt.Errorf("can't seed admin: %w", err)
	}

	a.api = handlers.New(a.srv, handlers.Options{
		Tokens:           tokens,
		Metrics:          m,
		LoginRate:        cfg.LoginRate,
		LoginBurst:       cfg.LoginBurst,
		ManagerMaxAmount: cfg.ManagerMaxAmount,
	})

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	a.startMailConsumer(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully", zap.String("storage", cfg.Storage), zap.String("mail_mode", cfg.MailMode))
	return nil
}

func (a *Application) buildRepositories(ctx context.Context) (*repo.Repositories, error) {
	if a.cfg.Storage == config.StorageMemory {
		zap.L().Warn("using in-memory storage, data is lost on restart")
		return repo.NewMemory(), nil
	}

	pool, err := getPgxpool(ctx, a.cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return nil, fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(ctx, pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		pool.Close()
		return nil, fmt.Errorf("can't run migrations: %w", err)
	}
	a.pool = pool
	return repo.New(pool, pg.NewTXManager(pool)), nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func getRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
		a.closeStorage()
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startMailConsumer(ctx context.Context) {
	if a.consumer == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.consumer.Run(ctx)
	}()
}

func (a *Application) closeStorage() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.L().Error("redis close failed", zap.Error(err))
		}
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
