// Command camonet builds, validates, loads, and serves the gold
// dimensional layer of the prescription analysis pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"camonet/internal/classify"
	"camonet/internal/config"
	"camonet/internal/dashboard"
	"camonet/internal/gold"
	"camonet/internal/pgload"
	"camonet/internal/silver"
	"camonet/internal/star"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.IsProduction() {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

func newRootCmd() *cobra.Command {
	var silverDir, goldDir string

	root := &cobra.Command{
		Use:           "camonet",
		Short:         "Clinical prescription star-schema pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&silverDir, "silver-dir", "", "silver layer directory (overrides SILVER_DIR)")
	root.PersistentFlags().StringVar(&goldDir, "gold-dir", "", "gold layer directory (overrides GOLD_DIR)")

	loadCfg := func() (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if silverDir != "" {
			cfg.SilverDir = silverDir
		}
		if goldDir != "" {
			cfg.GoldDir = goldDir
		}
		return cfg, nil
	}

	root.AddCommand(newBuildCmd(loadCfg))
	root.AddCommand(newValidateCmd(loadCfg))
	root.AddCommand(newLoadCmd(loadCfg))
	root.AddCommand(newServeCmd(loadCfg))
	return root
}

// build runs the full silver-to-gold pipeline and prints a run summary.
// Exit is non-zero on a stage failure or any integrity violation.
func newBuildCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the gold star schema from silver tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			p := star.Pipeline{
				Silver: silver.Layer{Dir: cfg.SilverDir},
				Gold:   gold.Layer{Dir: cfg.GoldDir},
				Ref:    classify.DefaultReference(),
				Log:    log,
			}
			res := p.Run()
			fmt.Fprint(cmd.OutOrStdout(), res.Summary())
			if res.Failed() {
				if res.Err != nil {
					return res.Err
				}
				return fmt.Errorf("%d referential integrity violations", len(res.Violations))
			}
			return nil
		},
	}
}

// validate re-checks an already-built gold layer without rebuilding it.
func newValidateCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check referential integrity of a built gold layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			set, err := gold.Layer{Dir: cfg.GoldDir}.ReadSet()
			if err != nil {
				return err
			}
			violations := star.ValidateStar(set)
			if len(violations) == 0 {
				log.Info().Msg("gold layer is referentially sound")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return fmt.Errorf("%d referential integrity violations", len(violations))
		},
	}
}

func newLoadCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load a built gold layer into PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			log := newLogger(cfg)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			set, err := gold.Layer{Dir: cfg.GoldDir}.ReadSet()
			if err != nil {
				return err
			}
			pool, err := pgload.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			loader := pgload.Loader{Pool: pool, Log: log}
			counts, err := loader.Load(ctx, set)
			if err != nil {
				return err
			}
			var total int64
			for _, n := range counts {
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows across %d tables\n", total, len(counts))
			return nil
		},
	}
}

func newServeCmd(loadCfg func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only dashboard aggregates over a built gold layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			set, err := gold.Layer{Dir: cfg.GoldDir}.ReadSet()
			if err != nil {
				return err
			}
			srv := dashboard.NewServer(set, log)
			log.Info().Str("port", cfg.Port).Msg("dashboard listening")
			return srv.Router().Start(":" + cfg.Port)
		},
	}
}
