package audit

import (
	"context"
	"log/slog"
	"time"
)

type Repository interface {
	Append(e *Entry) error
	Recent(limit int) ([]*Entry, error)
	RecentForUser(userID string, limit int) ([]*Entry, error)
}

// Provider hands out the repository bound to a guild's store.
type Provider interface {
	ForGuild(guildID string) (Repository, error)
}

const defaultTailLimit = 50

type Service struct {
	stores Provider
	logger *slog.Logger
}

func NewService(stores Provider, logger *slog.Logger) *Service {
	return &Service{
		stores: stores,
		logger: logger,
	}
}

// Record appends an audit entry. Failures are logged and swallowed so a
// broken trail never blocks the command that triggered it.
func (s *Service) Record(ctx context.Context, guildID, adminID, adminUsername, action string, targetUserID *string, details string) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		s.logger.Error("audit store unavailable",
			slog.String("guild_id", guildID),
			slog.String("error", err.Error()))
		return
	}

	entry := &Entry{
		Timestamp:     time.Now().UnixMilli(),
		AdminID:       adminID,
		AdminUsername: adminUsername,
		Action:        action,
		TargetUserID:  targetUserID,
		Details:       details,
	}
	if err := repo.Append(entry); err != nil {
		s.logger.Error("failed to append audit entry",
			slog.String("guild_id", guildID),
			slog.String("action", action),
			slog.String("error", err.Error()))
	}
}

func (s *Service) Recent(ctx context.Context, guildID string, limit int) ([]*Entry, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTailLimit
	}
	return repo.Recent(limit)
}

func (s *Service) RecentForUser(ctx context.Context, guildID, userID string, limit int) ([]*Entry, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTailLimit
	}
	return repo.RecentForUser(userID, limit)
}
