package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dutytrack/dutytrack/internal/storage"
	"github.com/dutytrack/dutytrack/pkg/logger"
)

var migrateCmd = &cobra.Command{
	RunE:  runMigration,
	Use:   "migrate",
	Short: "migrate every configured guild store to the latest schema",
}

func runMigration(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.L()

	registry, err := storage.NewRegistry(cfg, lg)
	if err != nil {
		return err
	}
	defer registry.Close()

	// opening a store runs its pending migrations
	if err := registry.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	lg.Info("all guild stores migrated", "guilds", len(cfg.GuildIDs()))
	return nil
}
