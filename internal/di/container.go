package di

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/infrastructure/browser/rod"
	"healing-agent/internal/infrastructure/env"
	"healing-agent/internal/infrastructure/healer"
	"healing-agent/internal/infrastructure/llm/openrouter"
	"healing-agent/internal/infrastructure/logger"
	"healing-agent/internal/usecase/crawler"
	"healing-agent/internal/usecase/executor"
	"healing-agent/internal/usecase/knowledge"
	"healing-agent/internal/usecase/reporter"
	"healing-agent/internal/usecase/tracker"
)

type Container struct {
	Browser  output.BrowserPort
	Healer   *healer.Client
	Logger   output.LoggerPort
	Tracker  *tracker.Tracker
	Executor *executor.Executor
	Crawler  *crawler.Crawler
	Sync     *knowledge.Sync
	Reporter *reporter.Reporter
}

type Config struct {
	HealerBaseURL      string
	HealerEmail        string
	HealerPassword     string
	HealerClientSecret string

	AppBaseURL    string
	SeedURLs      []string
	MaxRoutes     int
	MaxDepth      int
	ScreenshotDir string

	OpenRouterAPIKey string
	OpenRouterModel  string

	BrowserHeadless bool
	BuildID         string
	Environment     string
}

// NewConfigFromEnv reads the container config the way the CLI expects it.
func NewConfigFromEnv(envService *env.EnvService) Config {
	return Config{
		HealerBaseURL:      envService.MustGet("HEALER_BASE_URL"),
		HealerEmail:        envService.MustGet("HEALER_EMAIL"),
		HealerPassword:     envService.MustGet("HEALER_PASSWORD"),
		HealerClientSecret: envService.Get("HEALER_CLIENT_SECRET"),

		AppBaseURL:    envService.MustGet("APP_BASE_URL"),
		MaxRoutes:     envService.GetInt("CRAWL_MAX_ROUTES", 30),
		MaxDepth:      envService.GetInt("CRAWL_MAX_DEPTH", 3),
		ScreenshotDir: envService.Get("CRAWL_SCREENSHOT_DIR"),

		OpenRouterAPIKey: envService.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:  envService.GetDefault("OPENROUTER_MODEL_NAME", "openai/gpt-4o-mini"),

		BrowserHeadless: envService.GetBool("BROWSER_HEADLESS", true),
		BuildID:         envService.Get("BUILD_ID"),
		Environment:     envService.GetDefault("APP_ENV", "local"),
	}
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter("healing-agent")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	client := healer.NewClient(healer.Config{
		BaseURL:      cfg.HealerBaseURL,
		Email:        cfg.HealerEmail,
		Password:     cfg.HealerPassword,
		ClientSecret: cfg.HealerClientSecret,
		HTTPTimeout:  30 * time.Second,
		Logger:       log,
	})

	track := tracker.New()
	exec := executor.New(browser, client, track, log, executor.DefaultConfig())

	crawlCfg := crawler.DefaultConfig(cfg.AppBaseURL)
	if len(cfg.SeedURLs) > 0 {
		crawlCfg.SeedURLs = cfg.SeedURLs
	}
	if cfg.MaxRoutes > 0 {
		crawlCfg.MaxRoutes = cfg.MaxRoutes
	}
	if cfg.MaxDepth > 0 {
		crawlCfg.MaxDepth = cfg.MaxDepth
	}
	crawlCfg.ScreenshotDir = cfg.ScreenshotDir
	crawl := crawler.New(browser, log, crawlCfg)

	var classifier output.IntentClassifierPort
	if cfg.OpenRouterAPIKey != "" {
		clsCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
		clsCfg.Logger = log
		classifier = openrouter.NewIntentClassifier(clsCfg)
	}
	sync := knowledge.New(crawl, classifier, client, log)

	report := reporter.New(client, track, log, reporter.RunInfo{
		RunID:       uuid.NewString(),
		BuildID:     cfg.BuildID,
		Environment: cfg.Environment,
	})

	return &Container{
		Browser:  browser,
		Healer:   client,
		Logger:   log,
		Tracker:  track,
		Executor: exec,
		Crawler:  crawl,
		Sync:     sync,
		Reporter: report,
	}, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
