// Package sweeper runs the background passes that keep ledgers current:
// expiring durable statuses whose end date has passed and closing shifts
// that ran far beyond any plausible duty length.
package sweeper

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/internal/deptaction"
)

// ExpirySweeper periodically deactivates durable statuses past their end
// date. Removals it performs carry no remover identity, which marks them as
// system expirations downstream.
type ExpirySweeper struct {
	actions  *deptaction.Service
	cfg      *internal.Config
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

func NewExpirySweeper(actions *deptaction.Service, cfg *internal.Config, logger *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		actions:  actions,
		cfg:      cfg,
		interval: cfg.Sweeper.ExpiryInterval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or the context ends. The
// first sweep happens immediately so a restart never leaves expired leaves
// waiting a full interval.
func (s *ExpirySweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		s.SweepAll(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.SweepAll(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *ExpirySweeper) Stop() {
	close(s.stop)
	<-s.done
}

// SweepAll sweeps every configured guild. Overlapping invocations are
// skipped rather than queued; the sweep is idempotent so the next tick
// covers anything missed.
func (s *ExpirySweeper) SweepAll(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("expiry sweep still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	for _, guildID := range s.cfg.GuildIDs() {
		if err := s.sweepGuild(ctx, guildID); err != nil {
			s.logger.Error("expiry sweep failed",
				"guild_id", guildID,
				"error", err)
		}
	}
}

func (s *ExpirySweeper) sweepGuild(ctx context.Context, guildID string) error {
	expired, err := s.actions.ExpiredLeaves(guildID)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	removed := 0
	for _, a := range expired {
		ok, err := s.actions.RemoveLeave(ctx, guildID, a.ID, nil, nil)
		if err != nil {
			s.logger.Error("failed to expire leave",
				"guild_id", guildID,
				"action_id", a.ID,
				"error", err)
			continue
		}
		if ok {
			removed++
		}
	}

	s.logger.Info("expiry sweep completed",
		"guild_id", guildID,
		"expired", len(expired),
		"removed", removed)
	return nil
}
