package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"depscope/internal/analyzer"
	"depscope/internal/config"
	"depscope/internal/logging"
	"depscope/internal/source"
)

var (
	engineOnce   sync.Once
	sharedEngine *analyzer.Engine
	engineErr    error
)

// getEngine returns a shared analysis engine, lazily initialized on first
// use: config is loaded from the local repo (or defaults for remote trees)
// and the provider is chosen by the --github flag.
func getEngine(logger *logging.Logger) (*analyzer.Engine, error) {
	engineOnce.Do(func() {
		cfg := loadConfig(logger)

		provider, err := buildProvider(cfg, logger)
		if err != nil {
			engineErr = err
			return
		}

		sharedEngine = analyzer.New(provider, cfg, logger)
	})

	return sharedEngine, engineErr
}

// mustGetEngine returns the shared engine or exits on error.
func mustGetEngine(logger *logging.Logger) *analyzer.Engine {
	engine, err := getEngine(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return engine
}

func loadConfig(logger *logging.Logger) *config.Config {
	root := repoFlag
	if githubFlag != "" {
		// Remote analysis still honors a local .depscope/ in the cwd
		root = "."
	}

	cfg, err := config.LoadConfig(root)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", logging.Fields{
			"error": err.Error(),
		})
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("Invalid config, using defaults", logging.Fields{
			"error": err.Error(),
		})
		cfg = config.DefaultConfig()
	}

	for _, o := range config.ApplyEnvOverrides(cfg) {
		logger.Debug("Applied environment override", logging.Fields{
			"variable": o.Variable,
			"value":    o.Value,
		})
	}

	return cfg
}

func buildProvider(cfg *config.Config, logger *logging.Logger) (source.Provider, error) {
	if githubFlag != "" {
		branch := branchFlag
		if branch == "" {
			branch = cfg.GitHub.Branch
		}
		token := os.Getenv("GITHUB_TOKEN")
		return source.NewGitHubProvider(githubFlag, branch, token, cfg.GitHub, cfg.Discovery, logger)
	}
	return source.NewLocalProvider(repoFlag, cfg.Discovery, logger)
}

// newContext returns a context cancelled by SIGINT/SIGTERM, so a long remote
// analysis aborts cooperatively and reports its partial result as cancelled.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newLogger creates the command logger from config defaults and flag
// overrides.
func newLogger() *logging.Logger {
	cfg := config.DefaultConfig().Logging

	format := logging.Format(cfg.Format)
	if logFormatFlag != "" {
		format = logging.Format(logFormatFlag)
	}
	if format != logging.JSONFormat {
		format = logging.HumanFormat
	}

	level := cfg.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}

	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  logging.ParseLevel(level),
	})
}
