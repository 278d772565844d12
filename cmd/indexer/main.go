package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goodnatureofminers/pixelnode/internal/eventbus"
	"github.com/goodnatureofminers/pixelnode/internal/metrics"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/archive"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/bitcoin"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/chain"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/service/indexer"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/storage/badger"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/subindexer"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/verifier"
)

type config struct {
	DataDir       string        `long:"data-dir" env:"PIXEL_INDEXER_DATA_DIR" description:"directory of the node database" default:"data"`
	Network       model.Network `long:"network" env:"PIXEL_INDEXER_NETWORK" description:"bitcoin network" choice:"mainnet" choice:"testnet" choice:"regtest" choice:"signet" default:"mainnet"`
	RPCURL        string        `long:"rpc-url" env:"PIXEL_INDEXER_RPC_URL" description:"Bitcoin RPC URL" default:"http://127.0.0.1:8332"`
	RPCUser       string        `long:"rpc-user" env:"PIXEL_INDEXER_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword   string        `long:"rpc-password" env:"PIXEL_INDEXER_RPC_PASSWORD" description:"Bitcoin RPC password"`
	Confirmations uint64        `long:"confirmations" env:"PIXEL_INDEXER_CONFIRMATIONS" description:"blocks a transaction needs before it is checked" default:"6"`
	Workers       int           `long:"workers" env:"PIXEL_INDEXER_WORKERS" description:"verification and fetch workers" default:"4"`
	BatchSize     int           `long:"batch-size" env:"PIXEL_INDEXER_BATCH_SIZE" description:"inventory outputs read per storage lookup" default:"64"`
	QueueCapacity int           `long:"queue-capacity" env:"PIXEL_INDEXER_QUEUE_CAPACITY" description:"verification queue capacity" default:"64"`
	StartHeight   uint64        `long:"start-height" env:"PIXEL_INDEXER_START_HEIGHT" description:"first block to index on an empty database" default:"1"`
	MaxReorgDepth uint64        `long:"max-reorg-depth" env:"PIXEL_INDEXER_MAX_REORG_DEPTH" description:"deepest reorganization handled before stopping" default:"100"`
	RetryCeiling  int           `long:"retry-ceiling" env:"PIXEL_INDEXER_RETRY_CEILING" description:"consecutive failed attempts before stopping" default:"10"`
	RetryBackoff  time.Duration `long:"retry-backoff" env:"PIXEL_INDEXER_RETRY_BACKOFF" description:"initial delay between retries" default:"1s"`
	MaxBackoff    time.Duration `long:"max-backoff" env:"PIXEL_INDEXER_MAX_BACKOFF" description:"longest delay between retries" default:"1m"`
	PollInterval  time.Duration `long:"poll-interval" env:"PIXEL_INDEXER_POLL_INTERVAL" description:"delay between polls at the chain tip" default:"10s"`
	MetricsAddr   string        `long:"metrics-addr" env:"PIXEL_INDEXER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"PIXEL_INDEXER_CLICKHOUSE_DSN" description:"archive ClickHouse DSN, archive is disabled when empty"`
	LogJSON       bool          `long:"log-json" env:"PIXEL_INDEXER_LOG_JSON" description:"production JSON logging"`
}

func (c config) params() model.IndexingParams {
	params := model.DefaultIndexingParams()
	params.Network = c.Network
	params.StartHeight = c.StartHeight
	params.Confirmations = c.Confirmations
	params.Workers = c.Workers
	params.BatchSize = c.BatchSize
	params.QueueCapacity = c.QueueCapacity
	params.MaxReorgDepth = c.MaxReorgDepth
	params.RetryCeiling = c.RetryCeiling
	params.RetryBackoff = c.RetryBackoff
	params.MaxBackoff = c.MaxBackoff
	params.PollInterval = c.PollInterval
	return params
}

func main() {
	cfg := config{}
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(cfg.LogJSON)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("pixel indexer failed", zap.Error(err))
	}
}

func newLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	params := cfg.params()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	logger = logger.With(zap.String("network", string(params.Network)))

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	rpcClient, err := newRPCClient(cfg.RPCURL, cfg.RPCUser, cfg.RPCPassword)
	if err != nil {
		return fmt.Errorf("init bitcoin rpc client: %w", err)
	}
	defer func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	}()
	source := bitcoin.NewSource(bitcoin.NewObservedClient(rpcClient, metrics.NewRPCClient(params.Network)))
	if err := source.CheckNetwork(ctx, params.Network); err != nil {
		return fmt.Errorf("check bitcoin node: %w", err)
	}

	store, err := badger.Open(cfg.DataDir, logger, metrics.NewStorage())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("storage not closed", zap.Error(err))
		}
	}()

	progress, err := store.Progress(ctx)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	logger.Info("resuming", zap.Uint64("height", progress.Height), zap.Stringer("hash", progress.Hash))

	bus := eventbus.New(logger, metrics.NewEventBus())
	defer bus.Close()

	pool := verifier.NewPool(verifier.NewEngine(), params.Workers, params.QueueCapacity, metrics.NewVerifier(params.Network), logger)
	defer pool.Close()

	idx, err := indexer.New(
		params,
		chain.NewLoader(source, store, progress, params, logger),
		store,
		chain.NewResolver(source, store, params.Workers, params.BatchSize),
		pool,
		subindexer.NewTable(params, logger),
		bus,
		metrics.NewIndexer(params.Network),
		logger,
	)
	if err != nil {
		return fmt.Errorf("init indexer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.ClickhouseDSN != "" {
		repo, err := archive.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
		defer func() {
			_ = repo.Close()
		}()
		if err := repo.Ping(ctx); err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
		sink := archive.NewSink(bus, repo, params.Network, archive.DefaultSinkConfig(), logger)
		g.Go(func() error {
			return sink.Run(gctx)
		})
	}

	g.Go(func() error {
		wakeOnSignal(gctx, idx, logger)
		return nil
	})
	g.Go(func() error {
		defer bus.Close()
		return idx.Run(gctx)
	})

	return g.Wait()
}

// wakeOnSignal polls the node right away on SIGUSR1, e.g. from a blocknotify hook.
func wakeOnSignal(ctx context.Context, idx *indexer.Indexer, logger *zap.Logger) {
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	defer signal.Stop(usr1)

	for {
		select {
		case <-ctx.Done():
			return
		case <-usr1:
			logger.Debug("block notification received")
			idx.Wake()
		}
	}
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	cfg := &rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}
	return rpcclient.New(cfg, nil)
}
