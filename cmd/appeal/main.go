// Package main is the entry point for the appeal engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"appeal-engine/internal/config"
	"appeal-engine/internal/pkg/db"
	"appeal-engine/internal/repository"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:           "appeal",
		Short:         "Ban appeal review game engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			setupLogging(loaded.Log)
			cfg = loaded
			log.Debug().Str("content", cfg.Content.Root).Msg("Configuration loaded")
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config", "Directory containing config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(lc config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if lc.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openArchive connects to the results database and applies the schema when
// configured to.
func openArchive(ctx context.Context) (*db.Pool, *repository.ArchiveRepository, error) {
	var opts []db.Option
	if cfg.Archive.Migrate {
		opts = append(opts, db.WithMigration(repository.Migrate))
	}
	pool, err := db.NewPool(ctx, &cfg.Database, opts...)
	if err != nil {
		return nil, nil, err
	}
	return pool, repository.NewArchiveRepository(pool.Pool), nil
}
