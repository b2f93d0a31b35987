package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dutytrack/dutytrack/internal/announce"
	"github.com/dutytrack/dutytrack/internal/core/events"
	"github.com/dutytrack/dutytrack/internal/deptaction"
	"github.com/dutytrack/dutytrack/internal/storage"
	"github.com/dutytrack/dutytrack/internal/sweeper"
	"github.com/dutytrack/dutytrack/pkg/logger"
)

var sweepCmd = &cobra.Command{
	RunE:  runSweep,
	Use:   "sweep",
	Short: "run one expiry sweep across all guild stores and exit",
}

func runSweep(_ *cobra.Command, _ []string) error {
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

	bus := events.NewEventBus(lg)
	announce.RegisterLogSink(bus, lg)
	announcer := announce.NewEventAnnouncer(bus, lg)
	actionService := deptaction.NewService(registry.ActionRepos(), announcer, lg)

	sweeper.NewExpirySweeper(actionService, cfg, lg).SweepAll(context.Background())
	return nil
}
