package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logguard/internal/alerts"
	"logguard/internal/api"
	"logguard/internal/collector"
	"logguard/internal/config"
	"logguard/internal/detect"
	"logguard/internal/logging"
	"logguard/internal/model"
	"logguard/internal/report"
	"logguard/internal/respond"
	"logguard/internal/storage"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML or JSON config file")
	apiKey := flag.String("api-key", "", "webhook API key (overrides config and API_KEY env)")
	nSigma := flag.Float64("n-sigma", 0, "override heuristic n_sigma threshold")
	out := flag.String("out", "", "override report output path")
	serve := flag.Bool("serve", false, "keep the REST collector and API running, one detection pass per interval")
	interval := flag.Duration("interval", 30*time.Second, "detection interval in serve mode")
	flag.Parse()

	if err := run(*configPath, *apiKey, *nSigma, *out, *serve, *interval); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, apiKey string, nSigma float64, out string, serve bool, interval time.Duration) error {
	var manager *config.Manager
	if configPath != "" {
		m, err := config.NewManager(config.ResolvePath(configPath))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		manager = m
	} else {
		manager = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := manager.Get()

	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	if apiKey != "" {
		cfg.Alerting.APIKey = apiKey
	}
	if nSigma != 0 {
		cfg.Detection.NSigma = nSigma
	}
	if out != "" {
		cfg.Report.Path = out
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("logguard starting", "version", version, "serve", serve)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer store.Close()
	}

	engine, err := detect.NewEngine(cfg.Detection, logger)
	if err != nil {
		return fmt.Errorf("build detection engine: %w", err)
	}
	alertStore := alerts.NewStore(cfg.Alerts.StoreLimit)
	coordinator := respond.NewCoordinator(cfg.Alerting, logger)
	var reporter *report.Reporter
	if cfg.Report.Enabled {
		reporter = report.NewReporter(config.ResolvePath(cfg.Report.Path))
	}

	p := &pipeline{
		cfg:         cfg,
		logger:      logger,
		engine:      engine,
		alertStore:  alertStore,
		coordinator: coordinator,
		reporter:    reporter,
		store:       store,
	}

	if !serve {
		return p.runOnce(ctx, batchSources(cfg, logger))
	}

	rest := collector.NewRESTSource(logger)
	rest.Start(ctx, cfg.Collector.REST)
	api.Start(ctx, manager, alertStore, engine.Detector().Strategy(), logger, version)

	sources := append(batchSources(cfg, logger), rest)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := p.runOnce(ctx, sources); err != nil {
				logger.Error("detection pass failed", "err", err)
			}
		case <-ctx.Done():
			logger.Info("logguard stopping")
			return nil
		}
	}
}

func batchSources(cfg *config.Config, logger *slog.Logger) []collector.Source {
	sources := make([]collector.Source, 0, 2)
	if cfg.Collector.File.Enabled {
		sources = append(sources, &collector.FileSource{Path: config.ResolvePath(cfg.Collector.File.Path)})
	}
	if cfg.Collector.Kafka.Enabled {
		sources = append(sources, collector.NewKafkaSource(cfg.Collector.Kafka, logger))
	}
	return sources
}

type pipeline struct {
	cfg         *config.Config
	logger      *slog.Logger
	engine      *detect.Engine
	alertStore  *alerts.Store
	coordinator *respond.Coordinator
	reporter    *report.Reporter
	store       storage.Store
}

// runOnce executes one self-contained detection run: collect, normalize,
// compact, detect, respond, report. Nothing carries over to the next run.
func (p *pipeline) runOnce(ctx context.Context, sources []collector.Source) error {
	var raw []model.RawEvent
	for _, src := range sources {
		events, err := src.Collect(ctx)
		if err != nil {
			return err
		}
		raw = append(raw, events...)
	}
	p.logger.Info("logs collected", "events", len(raw))

	events := collector.Normalize(raw, p.cfg.Parser)
	if p.cfg.Compact.Enabled {
		before := len(events)
		events = collector.Compact(events)
		if dropped := before - len(events); dropped > 0 {
			p.logger.Info("duplicate events dropped", "dropped", dropped)
		}
	}

	records := detect.Aggregate(events)
	ruleAlerts, anomalyAlerts := p.engine.AnalyzeRecords(records)

	p.alertStore.AddAll(ruleAlerts)
	p.alertStore.AddAll(anomalyAlerts)

	if p.store != nil {
		runAt := time.Now().UTC()
		if err := p.store.SaveAggregates(ctx, runAt, records); err != nil {
			p.logger.Error("persist aggregates failed", "err", err)
		}
		all := append(append([]model.Alert{}, ruleAlerts...), anomalyAlerts...)
		if err := p.store.SaveAlerts(ctx, runAt, all); err != nil {
			p.logger.Error("persist alerts failed", "err", err)
		}
	}

	p.coordinator.Handle(ctx, ruleAlerts, anomalyAlerts)

	if p.reporter != nil {
		if _, err := p.reporter.Generate(ruleAlerts, anomalyAlerts); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		p.logger.Info("report written", "path", p.reporter.Path())
	}
	return nil
}
