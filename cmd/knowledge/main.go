package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"healing-agent/internal/di"
	"healing-agent/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()
	cfg := di.NewConfigFromEnv(envService)

	timeout := envService.GetDuration("CRAWL_TIMEOUT", 15*time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("init failed: %v", err)
	}
	defer container.Close()

	if envService.GetBool("SYNC_DISABLED", false) {
		runCrawlOnly(ctx, container, envService)
		return
	}

	container.Logger.Info("Knowledge sync started", "base_url", cfg.AppBaseURL)
	summary, err := container.Sync.Run(ctx)
	if err != nil {
		container.Logger.Error("Knowledge sync failed", "error", err)
		fmt.Fprintf(os.Stderr, "knowledge sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("visited %d routes, synced %d, failed %d\n",
		summary.RoutesVisited, summary.Synced, summary.Failed)
	for _, w := range summary.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range summary.Errors {
		fmt.Printf("error: %s\n", e)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// runCrawlOnly crawls and writes the result to a local file instead of the
// backend. Useful when inspecting what a sync would push.
func runCrawlOnly(ctx context.Context, container *di.Container, envService *env.EnvService) {
	container.Logger.Info("Crawl started, sync disabled")

	result, err := container.Crawler.Crawl(ctx)
	if err != nil {
		container.Logger.Error("Crawl failed", "error", err)
		fmt.Fprintf(os.Stderr, "crawl failed: %v\n", err)
		os.Exit(1)
	}

	outPath := envService.GetDefault("CRAWL_OUTPUT_FILE", "crawl-result.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode crawl result: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		log.Fatalf("write %s: %v", outPath, err)
	}

	fmt.Printf("visited %d routes, wrote %s\n", result.RoutesVisited, outPath)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
