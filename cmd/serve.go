package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"interview-agent/internal/ai/gemini"
	"interview-agent/internal/interview"
	"interview-agent/internal/logger"
	"interview-agent/internal/report"
	"interview-agent/internal/resume"
	"interview-agent/internal/secrets"
	"interview-agent/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultListen          = ":8080"
	defaultBodyLimitMB     = 50
	defaultShutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview agent HTTP service",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on. Default is :8080.")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

// serve wires the adapters together and runs the HTTP service until
// interrupted.
func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	logger.Info("starting the interview-agent", zap.String("version", version))

	apiKey, err := resolveAPIKey(config)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE or the 'gemini.api-key-file' key in the configuration file"),
		)
	}

	gcfg := config.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, logger)
	if err != nil {
		logger.Fatal("building gemini generator", zap.Error(err))
	}

	adapters := buildAdapters(generator, gcfg, logger)

	extractor, err := resume.NewExtractor(ctx, logger)
	if err != nil {
		logger.Fatal("building pdf extractor", zap.Error(err))
	}

	maxQuestions := interview.DefaultMaxQuestions
	if config.Interview != nil && config.Interview.MaxQuestions > 0 {
		maxQuestions = config.Interview.MaxQuestions
	}

	store := interview.NewStore(maxQuestions)

	serverCfg, shutdownTimeout := buildServerConfig(config.Server)

	srv, err := server.New(serverCfg, server.Deps{
		Store:       store,
		Extractor:   extractor,
		Profiles:    adapters.profiler,
		Transcriber: adapters.transcriber,
		Questions:   adapters.interviewer,
		Reports:     report.NewGenerator(adapters.scorer, logger),
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("building http server", zap.Error(err))
	}

	logger.Info("listening for interview requests",
		zap.String("address", serverCfg.Listen),
		zap.Int("max_questions", maxQuestions),
		zap.String("model", generator.Model()),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	select {
	case err := <-errCh:
		logger.Fatal("server stopped unexpectedly", zap.Error(err))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
		if err := srv.Shutdown(shutdownTimeout); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

type geminiAdapters struct {
	interviewer *gemini.Interviewer
	profiler    *gemini.Profiler
	scorer      *gemini.Scorer
	transcriber *gemini.Transcriber
}

func buildAdapters(generator *gemini.Generator, cfg *GeminiConfig, base *zap.Logger) geminiAdapters {
	aiLogger := logger.WithCommonFields(base, "gemini", generator.Model())

	return geminiAdapters{
		interviewer: gemini.NewInterviewer(generator, aiLogger, cfg.MaxLogLength),
		profiler:    gemini.NewProfiler(generator, aiLogger, cfg.MaxLogLength),
		scorer:      gemini.NewScorer(generator, aiLogger, cfg.MaxLogLength),
		transcriber: gemini.NewTranscriber(generator, aiLogger, cfg.MaxLogLength),
	}
}

func buildServerConfig(cfg *ServerConfig) (*server.Config, time.Duration) {
	listen := defaultListen
	bodyLimitMB := defaultBodyLimitMB
	shutdownTimeout := defaultShutdownTimeout

	if cfg != nil {
		if strings.TrimSpace(cfg.Listen) != "" {
			listen = cfg.Listen
		}
		if cfg.BodyLimitMB > 0 {
			bodyLimitMB = cfg.BodyLimitMB
		}
		if cfg.ShutdownTimeout > 0 {
			shutdownTimeout = cfg.ShutdownTimeout
		}
	}

	return &server.Config{
		Listen:    listen,
		BodyLimit: bodyLimitMB * 1024 * 1024,
	}, shutdownTimeout
}

func resolveAPIKey(config *Config) (string, error) {
	var value, file string
	if config != nil && config.Gemini != nil {
		value = config.Gemini.APIKey
		file = config.Gemini.APIKeyFile
	}

	if strings.TrimSpace(file) == "" {
		file = strings.TrimSpace(viper.GetString("gemini.api-key-file"))
	}
	if strings.TrimSpace(value) == "" {
		value = strings.TrimSpace(viper.GetString("gemini.api-key"))
	}

	return secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: value,
		File:  file,
	})
}
