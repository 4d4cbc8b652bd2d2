package main

import (
	"context"
	"fmt"
	"os"

	"arktools/internal/config"
	"arktools/internal/engine"
	"arktools/internal/logging"
)

// mustLoadConfig loads the workspace configuration or exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(workspaceFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustNewEngine builds a session engine or exits on error. A non-empty
// sessionDir resumes an existing session instead of creating one.
func mustNewEngine(cfg *config.Config, sessionDir string, logger *logging.Logger) *engine.Engine {
	eng, err := engine.New(cfg, engine.Options{
		SessionDir: sessionDir,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return eng
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger creates a logger with the specified format.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  logging.InfoLevel,
	})
}
