// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/excel-azmin/ractso/internal/config"
	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/recommend"
)

// newRootCommand builds the CLI. Running the binary without a subcommand
// starts the server.
func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "ractso",
		Short:         "Post recommendation service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loadDotEnv(envFile)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		newMigrateCommand(),
		newStatsCommand(),
	)
	return root
}

func newMigrateCommand() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the view-history schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if seed {
				cfg.Database.SeedMockData = true
			}

			db, err := openStore(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer closeLogged("database", db.Close)

			count, err := db.CountViewRecords(cmd.Context())
			if err != nil {
				return fmt.Errorf("count view records: %w", err)
			}
			logging.Info().Int("view_records", count).Msg("Schema is up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "create and fill demo content tables")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Rebuild the model from the store and print its statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openStore(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer closeLogged("database", db.Close)

			return printStats(cmd.Context(), cmd.OutOrStdout(), &cfg.Recommend, db)
		},
	}
}

// printStats warm-starts a fresh engine from source and writes its
// statistics and the load status as indented JSON.
func printStats(ctx context.Context, w io.Writer, cfg *config.RecommendConfig, source recommend.HistoryProvider) error {
	engine, err := recommend.NewEngine(engineConfig(cfg), logging.WithComponent("recommend"))
	if err != nil {
		return err
	}

	loader := recommend.NewLoader(engine, source, logging.WithComponent("warm-start"))
	if err := loader.Run(ctx); err != nil {
		return fmt.Errorf("warm start: %w", err)
	}

	out, err := json.MarshalIndent(struct {
		recommend.Statistics
		WarmStart recommend.LoadStatus `json:"warm_start"`
	}{engine.Statistics(), loader.Status()}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// loadDotEnv reads KEY=value pairs into the environment. Variables already
// set win, and a missing file is not an error.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to read env file")
	}
}

// loadConfig loads configuration and configures the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// closeLogged runs a Close function and logs its error.
func closeLogged(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("component", what).Msg("Close failed")
	}
}
