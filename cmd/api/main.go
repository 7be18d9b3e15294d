package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Shaharyar2310/silkif.y/internal/adapter/repo"
	"github.com/Shaharyar2310/silkif.y/internal/domain"
	"github.com/Shaharyar2310/silkif.y/internal/http/handlers"
	httpapi "github.com/Shaharyar2310/silkif.y/internal/http/httpapi"
	"github.com/Shaharyar2310/silkif.y/internal/imagegen"
	"github.com/Shaharyar2310/silkif.y/internal/infra"
	"github.com/Shaharyar2310/silkif.y/internal/middleware"
	"github.com/Shaharyar2310/silkif.y/internal/providers/gemini"
	"github.com/Shaharyar2310/silkif.y/internal/providers/openai"
	"github.com/Shaharyar2310/silkif.y/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare upload dir")
	}

	processor, err := buildProcessor(ctx, cfg, files, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image pipeline")
	}

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Files:    files,
		Images:   processor,
		Sessions: middleware.NewSessionManager(cfg.JWTSecret, cfg.SessionTTL, strings.HasPrefix(cfg.BaseURL, "https://")),
	}
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("base_url", cfg.BaseURL).
			Str("vision", cfg.VisionProvider).
			Bool("postgres", cfg.UsesDatabase()).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// in-flight generations can take a while
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ExternalCallTimeout+10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// openStore returns the Postgres store when DATABASE_URL is set and the
// in-process store otherwise.
func openStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.Store, func(), error) {
	if !cfg.UsesDatabase() {
		logger.Warn().Msg("DATABASE_URL not set, history and accounts are kept in memory")
		return repo.NewMemoryStore(), func() {}, nil
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repo.NewPostgresStore(runner), pool.Close, nil
}

func buildProcessor(ctx context.Context, cfg *infra.Config, files *storage.FileStore, logger zerolog.Logger) (*imagegen.Processor, error) {
	oa, err := openai.NewClient(openai.Options{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		OrgID:       cfg.OpenAIOrg,
		VisionModel: cfg.OpenAIVisionModel,
		ImageModel:  cfg.OpenAIImageModel,
		ImageSize:   cfg.ImageSize,
		Timeout:     cfg.ExternalCallTimeout,
	})
	if err != nil {
		return nil, err
	}

	var describer imagegen.Describer = oa
	if cfg.VisionProvider == "gemini" {
		gd, err := gemini.NewDescriber(ctx, gemini.Options{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			return nil, err
		}
		describer = gd
	}

	return imagegen.NewProcessor(imagegen.ProcessorOptions{
		Describer:     describer,
		Generator:     oa,
		Fetcher:       imagegen.NewFetcher(imagegen.FetcherOptions{Timeout: cfg.ExternalCallTimeout}),
		Store:         files,
		PublicBaseURL: cfg.BaseURL,
		CallTimeout:   cfg.ExternalCallTimeout,
		Logger:        logger.With().Str("component", "imagegen").Logger(),
	})
}
