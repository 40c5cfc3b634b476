package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brownzinoart/weready/internal/config"
	"github.com/brownzinoart/weready/internal/data/cache"
	"github.com/brownzinoart/weready/internal/data/history"
	"github.com/brownzinoart/weready/internal/detect"
	"github.com/brownzinoart/weready/internal/detect/registry"
	"github.com/brownzinoart/weready/internal/server"
	"github.com/brownzinoart/weready/internal/shared/observability"
	"github.com/brownzinoart/weready/internal/watcher"
)

var (
	configPath = flag.String("config", "./weready.toml", "Path to config file")
	file       = flag.String("file", "", "Run single detection on a source file and exit")
	langFlag   = flag.String("lang", "", "Language for -file (default: inferred from extension)")
	serve      = flag.Bool("serve", false, "Run the API server (the default mode)")
	watch      = flag.Bool("watch", false, "Watch configured paths and re-run detection on change")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("weready v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./weready.toml" && os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		ServiceName:  "weready",
		Exporter:     cfg.Telemetry.TraceExporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	detector := detect.NewDetector(detect.Options{
		PyPI: registry.Config{
			BaseURL: cfg.Registry.PyPIURL,
			Timeout: cfg.Registry.Timeout,
			Rate:    cfg.Registry.Rate,
			Burst:   cfg.Registry.Burst,
		},
		NPM: registry.Config{
			BaseURL: cfg.Registry.NPMURL,
			Timeout: cfg.Registry.Timeout,
			Rate:    cfg.Registry.Rate,
			Burst:   cfg.Registry.Burst,
		},
	})

	if *file != "" {
		os.Exit(runOnce(ctx, detector, *file, *langFlag))
	}

	if *watch && !*serve {
		os.Exit(runWatch(ctx, cfg, detector))
	}

	os.Exit(runServe(ctx, cfg, detector))
}

func runOnce(ctx context.Context, detector *detect.Detector, path, langOverride string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read source file", "path", path, "error", err)
		return 1
	}

	var lang detect.Language
	if langOverride != "" {
		lang, err = detect.ParseLanguage(langOverride)
		if err != nil {
			slog.Error("invalid language", "lang", langOverride, "error", err)
			return 1
		}
	} else {
		var ok bool
		lang, ok = watcher.LanguageForPath(path)
		if !ok {
			slog.Error("cannot infer language from extension, use -lang", "path", path)
			return 1
		}
	}

	result, err := detector.Detect(ctx, string(source), lang)
	if err != nil {
		slog.Error("detection failed", "error", err)
		return 1
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slog.Error("failed to encode result", "error", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

func runWatch(ctx context.Context, cfg *config.Config, detector *detect.Detector) int {
	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Watch.Exclude, func(paths []string) {
		for _, path := range paths {
			lang, ok := watcher.LanguageForPath(path)
			if !ok {
				continue
			}
			source, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("failed to read changed file", "path", path, "error", err)
				continue
			}
			result, err := detector.Detect(ctx, string(source), lang)
			if err != nil {
				slog.Warn("detection failed", "path", path, "error", err)
				continue
			}
			if result.UnverifiedCount > 0 {
				slog.Warn("possible hallucinated packages",
					"path", path,
					"score", result.Score,
					"confidence", result.Confidence,
					"packages", result.Unverified,
				)
			} else {
				slog.Info("no hallucinated packages",
					"path", path,
					"references", result.TotalReferences,
					"method", result.Method,
				)
			}
		}
	})
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		return 1
	}
	defer w.Close()

	if err := w.Watch(cfg.Watch.Paths); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	slog.Info("watching for changes", "paths", cfg.Watch.Paths)
	<-ctx.Done()
	return 0
}

func runServe(ctx context.Context, cfg *config.Config, detector *detect.Detector) int {
	var resultCache *cache.Cache
	if cfg.Cache.Enabled {
		resultCache = cache.New(cfg.Cache.Addr, cfg.Cache.TTL)
		defer resultCache.Close()
	}

	var store *history.Store
	if cfg.History.Enabled {
		var err error
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			slog.Error("failed to open history store", "path", cfg.History.Path, "error", err)
			return 1
		}
		defer store.Close()
	}

	srv := server.New(cfg.Server.Addr, detector, resultCache, store)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("api server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return 1
		}
	}
	return 0
}
