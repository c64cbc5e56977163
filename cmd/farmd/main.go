package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"farmchain/config"
	"farmchain/core/clock"
	"farmchain/core/events"
	"farmchain/core/state"
	nativecommon "farmchain/native/common"
	lm "farmchain/native/liquiditymining"
	"farmchain/native/xykmining"
	"farmchain/observability/eventlog"
	"farmchain/observability/logging"
	"farmchain/observability/metrics"
	telemetry "farmchain/observability/otel"
	"farmchain/rpc/farmquery"
	"farmchain/storage"
)

func main() {
	configFile := flag.String("config", "./farmd.toml", "Path to the configuration file")
	scenarioFile := flag.String("scenario", "", "Path to a YAML scenario to execute")
	serve := flag.Bool("serve", false, "Keep serving the query API after the scenario finished")
	flag.Parse()

	if err := run(*configFile, *scenarioFile, *serve, os.Stdout); err != nil {
		slog.Error("farmd failed", "error", err)
		os.Exit(1)
	}
}

func run(configFile, scenarioFile string, serve bool, out io.Writer) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser := logging.SetupWithOptions("farmd", cfg.Logging.Environment, logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		headers, err := telemetry.ParseHeaders(cfg.Telemetry.Headers)
		if err != nil {
			return err
		}
		logger.Info("starting telemetry",
			"endpoint", cfg.Telemetry.Endpoint,
			logging.MaskHeaders("headers", headers))
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName: "farmd",
			Environment: cfg.Logging.Environment,
			Endpoint:    cfg.Telemetry.Endpoint,
			Insecure:    cfg.Telemetry.Insecure,
			Headers:     headers,
			Metrics:     cfg.Telemetry.Metrics,
			Traces:      cfg.Telemetry.Traces,
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	db, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer db.Close()
	logger.Info("state backend opened", "backend", cfg.Backend, "data_dir", cfg.DataDir)

	params, err := cfg.Mining.Params()
	if err != nil {
		return err
	}
	var sc *Scenario
	if scenarioFile != "" {
		if sc, err = LoadScenario(scenarioFile); err != nil {
			return err
		}
	} else {
		sc = &Scenario{}
	}

	manager := state.NewManager(db)
	height, err := resumeHeight(manager, sc.StartBlock)
	if err != nil {
		return err
	}
	if height != sc.StartBlock {
		logger.Info("resuming from recorded block", "block", height, "scenario_start", sc.StartBlock)
	}
	provider := clock.NewManual(height)
	engine := lm.NewEngine(params)
	module, err := xykmining.New(manager, engine, provider, cfg.Mining.Module())
	if err != nil {
		return err
	}
	module.SetLogger(logger.With("module", "xykmining"))
	module.SetMetrics(metrics.Farming())
	if cfg.Mining.Paused {
		pauses := nativecommon.NewPauseSet("xykmining", "liquiditymining")
		module.SetPauses(pauses)
		engine.SetPauses(pauses)
	}

	emitters := events.Fanout{printer{out: out}}
	var index *eventlog.Store
	if cfg.EventLog.Path != "" {
		if index, err = eventlog.Open(cfg.EventLog.Path); err != nil {
			return err
		}
		defer index.Close()
		index.SetLogger(logger.With("component", "eventlog"))
		emitters = append(emitters, index)
	}
	module.SetEmitter(emitters)

	if err := sc.Seed(manager); err != nil {
		return fmt.Errorf("seed scenario: %w", err)
	}
	runner := &Runner{module: module, manager: manager, clock: provider, out: out}
	if err := runner.Run(ctx, sc); err != nil {
		return err
	}
	digest, err := module.Digest()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# digest %s\n", digest)

	if !serve {
		return nil
	}
	queryCfg := farmquery.Config{
		Reader:   module,
		Gatherer: prometheus.DefaultGatherer,
		Limits: farmquery.RateLimit{
			RequestsPerSecond: cfg.Query.RequestsPerSecond,
			Burst:             cfg.Query.Burst,
		},
		Logger: logger.With("component", "farmquery"),
	}
	if index != nil {
		queryCfg.Events = index
	}
	return serveQuery(ctx, cfg.Query.ListenAddress, farmquery.New(queryCfg), logger)
}

// resumeHeight picks the block the clock starts at. A store that already ran
// farming calls never restarts below the last block it recorded.
func resumeHeight(manager *state.Manager, start uint64) (uint64, error) {
	var last uint64
	err := manager.Read(func(tx *state.Tx) error {
		var err error
		last, err = tx.LastBlock()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read recorded block: %w", err)
	}
	if last > start {
		return last, nil
	}
	return start, nil
}

func openBackend(cfg *config.Config) (storage.Database, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemDB(), nil
	case config.BackendBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "state.bolt"))
	default:
		return storage.NewLevelDB(cfg.DataDir)
	}
}

func serveQuery(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              strings.TrimSpace(addr),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("query api listening", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
