package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"pessoas/cache"
	"pessoas/config"
	"pessoas/db"
	handler "pessoas/http"
	"pessoas/logger"
	"pessoas/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()

	store, closeCache, err := withCache(ctx, store, cfg.Cache, log)
	if err != nil {
		return err
	}
	defer closeCache()

	var (
		recorder metrics.Recorder = metrics.Nop{}
		gatherer prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewCollector(reg)
		gatherer = reg
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ApplicationPort),
		Handler:      handler.NewRouter(handler.New(store, recorder), log, gatherer),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Msg("starting server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (db.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("host", cfg.Host).Msg("connected to postgres")
		return db.NewPostgresStore(pool), pool.Close, nil

	default:
		client, err := db.NewMongoClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("host", cfg.Host).Str("database", cfg.DatabaseName).Msg("connected to mongodb")

		collection := cfg.Collection
		if collection == "" {
			collection = db.PessoasCollection
		}
		store := db.NewMongoStore(client.Database(cfg.DatabaseName).Collection(collection))

		if cfg.CreateIndexes {
			if err := store.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, nil, err
			}
		}

		return store, func() { _ = client.Disconnect(context.Background()) }, nil
	}
}

func withCache(ctx context.Context, store db.Store, cfg config.CacheConfig, log zerolog.Logger) (db.Store, func(), error) {
	switch cfg.Driver {
	case config.CacheMemory:
		c, err := cache.NewRistretto(cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("caching pessoas in memory")
		return db.NewCachedStore(store, c, log), c.Close, nil

	case config.CacheRedis:
		c := cache.NewRedis(cfg.Addr, cfg.Password, cfg.TTL)
		if err := c.Ping(ctx); err != nil {
			_ = c.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
		}
		log.Info().Str("addr", cfg.Addr).Msg("caching pessoas in redis")
		return db.NewCachedStore(store, c, log), func() { _ = c.Close() }, nil

	default:
		return store, func() {}, nil
	}
}
