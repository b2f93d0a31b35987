package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/internal/announce"
	"github.com/dutytrack/dutytrack/internal/audit"
	"github.com/dutytrack/dutytrack/internal/core/events"
	"github.com/dutytrack/dutytrack/internal/deptaction"
	"github.com/dutytrack/dutytrack/internal/quotacycle"
	"github.com/dutytrack/dutytrack/internal/shift"
	"github.com/dutytrack/dutytrack/internal/storage"
	"github.com/dutytrack/dutytrack/internal/sweeper"
	"github.com/dutytrack/dutytrack/internal/transport/rest"
	"github.com/dutytrack/dutytrack/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the duty tracking engine",
	Long:  `Open the guild stores, start the background sweepers and serve the ops API.`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Registry *storage.Registry
	Shifts   *shift.Service
	Cycles   *quotacycle.Service
	Actions  *deptaction.Service
	Audits   *audit.Service
	Expiry   *sweeper.ExpirySweeper
	AutoEnd  *sweeper.AutoEndMonitor
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// every guild needs an active cycle before shifts can book against one
	for _, guildID := range deps.Config.GuildIDs() {
		if _, err := deps.Cycles.EnsureActive(guildID); err != nil {
			deps.Logger.Error("failed to ensure active quota cycle", "guild_id", guildID, "error", err)
			os.Exit(1)
		}
	}

	deps.Expiry.Start(ctx)
	deps.AutoEnd.Start(ctx)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting ops API server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		deps.Logger.Error("server shutdown error", "error", err)
	}

	deps.Expiry.Stop()
	deps.AutoEnd.Stop()
	cancel()

	if err := deps.Registry.Close(); err != nil {
		deps.Logger.Error("store close error", "error", err)
	}

	deps.Logger.Info("stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	lg := logger.L()

	registry, err := storage.NewRegistry(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store registry: %w", err)
	}
	if err := registry.Open(); err != nil {
		return nil, fmt.Errorf("failed to open guild stores: %w", err)
	}

	bus := events.NewEventBus(lg)
	announce.RegisterLogSink(bus, lg)
	announcer := announce.NewEventAnnouncer(bus, lg)

	shiftService := shift.NewService(registry.ShiftRepos(), announcer, cfg, lg)
	cycleService := quotacycle.NewService(registry.CycleRepos(), lg)
	actionService := deptaction.NewService(registry.ActionRepos(), announcer, lg)
	auditService := audit.NewService(registry.AuditRepos(), lg)

	expirySweeper := sweeper.NewExpirySweeper(actionService, cfg, lg)
	autoEndMonitor := sweeper.NewAutoEndMonitor(shiftService, cfg, lg)

	router := chi.NewRouter()
	dutyHandler := rest.NewDutyHandler(shiftService, cycleService, actionService, auditService, lg)
	rest.RegisterAllRoutes(router, cfg, registry, dutyHandler, lg)

	return &Dependencies{
		Config:   cfg,
		Registry: registry,
		Shifts:   shiftService,
		Cycles:   cycleService,
		Actions:  actionService,
		Audits:   auditService,
		Expiry:   expirySweeper,
		AutoEnd:  autoEndMonitor,
		Router:   router,
		Logger:   lg,
	}, nil
}
