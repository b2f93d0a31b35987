package sweeper

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/internal/shift"
)

// AutoEndMonitor closes shifts left running past the guild's configured
// maximum. Guilds with auto-end disabled are left alone.
type AutoEndMonitor struct {
	shifts   *shift.Service
	cfg      *internal.Config
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

func NewAutoEndMonitor(shifts *shift.Service, cfg *internal.Config, logger *slog.Logger) *AutoEndMonitor {
	return &AutoEndMonitor{
		shifts:   shifts,
		cfg:      cfg,
		interval: cfg.Sweeper.AutoEndInterval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (m *AutoEndMonitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.CheckAll(ctx)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *AutoEndMonitor) Stop() {
	close(m.stop)
	<-m.done
}

func (m *AutoEndMonitor) CheckAll(ctx context.Context) {
	if !m.running.CompareAndSwap(false, true) {
		m.logger.Warn("auto-end check still running, skipping tick")
		return
	}
	defer m.running.Store(false)

	for _, guildID := range m.cfg.GuildIDs() {
		guild, err := m.cfg.Guild(guildID)
		if err != nil {
			continue
		}
		if !guild.Shifts.AutoEndEnabled {
			continue
		}
		if err := m.checkGuild(ctx, guildID, guild.Shifts.AutoEndAfterHours); err != nil {
			m.logger.Error("auto-end check failed",
				"guild_id", guildID,
				"error", err)
		}
	}
}

func (m *AutoEndMonitor) checkGuild(ctx context.Context, guildID string, maxHours int) error {
	active, err := m.shifts.AllActiveShifts(guildID)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-time.Duration(maxHours) * time.Hour).UnixMilli()
	for _, sh := range active {
		if sh.StartTime > cutoff {
			continue
		}
		if _, err := m.shifts.AutoEndShift(ctx, guildID, sh.ID); err != nil {
			m.logger.Error("failed to auto-end shift",
				"guild_id", guildID,
				"shift_id", sh.ID,
				"user_id", sh.UserID,
				"error", err)
		}
	}
	return nil
}
