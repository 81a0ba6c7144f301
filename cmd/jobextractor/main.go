// Package main wires together the job extraction service.
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
	"time"

	"go.uber.org/zap"

	"github.com/mkardas/job-extractor/internal/api"
	"github.com/mkardas/job-extractor/internal/cache"
	"github.com/mkardas/job-extractor/internal/clock/system"
	"github.com/mkardas/job-extractor/internal/config"
	"github.com/mkardas/job-extractor/internal/enrich"
	"github.com/mkardas/job-extractor/internal/extractor"
	"github.com/mkardas/job-extractor/internal/fetcher"
	collyfetcher "github.com/mkardas/job-extractor/internal/fetcher/colly"
	headlessfetcher "github.com/mkardas/job-extractor/internal/fetcher/headless"
	"github.com/mkardas/job-extractor/internal/logging"
	"github.com/mkardas/job-extractor/internal/throttle"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := system.New()
	recordCache := cache.New(cfg.CacheTTL(), cfg.Cache.Capacity, clk)
	gate := throttle.New(cfg.ThrottleWindow(), cfg.Throttle.MaxRequests, clk)

	plainFetcher := collyfetcher.New(collyfetcher.Config{
		Timeout:      cfg.FetchTimeout(),
		MaxRedirects: cfg.Fetch.MaxRedirects,
	})
	politeness := fetcher.NewPoliteness(fetcher.PolitenessConfig{
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
	})

	var (
		headless fetcher.Fetcher
		detector extractor.RenderDetector
	)
	if cfg.Headless.Enabled {
		headlessFetcher, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Warn("headless fetcher init failed", zap.Error(err))
		} else {
			defer headlessFetcher.Close()
			headless = headlessFetcher
			detector = headlessfetcher.NewDetector(cfg.Headless.BodyThreshold)
		}
	}

	var enricher extractor.Enricher
	if cfg.Enrich.Enabled {
		client, err := enrich.New(enrich.Config{
			APIKey:      cfg.Enrich.APIKey,
			Model:       cfg.Enrich.Model,
			BaseURL:     cfg.Enrich.BaseURL,
			Temperature: cfg.Enrich.Temperature,
			MaxTokens:   cfg.Enrich.MaxTokens,
			MaxContent:  cfg.Enrich.MaxContent,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "enrichment init failed: %v\n", err)
			os.Exit(1)
		}
		enricher = client
	} else {
		logger.Warn("enrichment disabled, records will only carry parser output")
	}

	pipeline, err := extractor.New(extractor.Options{
		Cache:      recordCache,
		Throttle:   gate,
		Fetcher:    plainFetcher,
		Headless:   headless,
		Detector:   detector,
		Enricher:   enricher,
		Politeness: politeness,
		Logger:     logger.Named("extractor"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline init failed: %v\n", err)
		os.Exit(1)
	}

	go pipeline.RunCacheJanitor(ctx, time.Duration(cfg.Cache.CleanupMinutes)*time.Minute)

	apiServer := api.NewServer(pipeline, logger.Named("api"),
		time.Duration(cfg.Server.RequestTimeout)*time.Second)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
