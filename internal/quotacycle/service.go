package quotacycle

import (
	"log/slog"
	"time"
)

// Repository defines guild-scoped data access for quota cycles. Reset is
// transactional: a concurrent reader observes either the old cycle or the
// new one, never neither and never both.
type Repository interface {
	GetActive() (*QuotaCycle, error)
	Create(startDate, endDate int64) (*QuotaCycle, error)
	DeactivateAll() error
	Reset(startDate, endDate int64) (*QuotaCycle, error)
}

// Provider hands out the repository for one guild's store.
type Provider interface {
	ForGuild(guildID string) (Repository, error)
}

// Service handles quota cycle business logic.
type Service struct {
	stores Provider
	logger *slog.Logger
}

func NewService(stores Provider, logger *slog.Logger) *Service {
	return &Service{stores: stores, logger: logger}
}

// ActiveCycle returns the guild's single active cycle, or nil when none
// exists yet (fresh store before bootstrap).
func (s *Service) ActiveCycle(guildID string) (*QuotaCycle, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetActive()
}

// CreateCycle inserts a new active cycle. It does not deactivate others;
// callers that need the single-active invariant restored atomically use
// Reset instead.
func (s *Service) CreateCycle(guildID string, startDate, endDate int64) (*QuotaCycle, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	c, err := repo.Create(startDate, endDate)
	if err != nil {
		return nil, err
	}
	s.logger.Info("quota cycle created", "guild_id", guildID, "cycle_id", c.ID, "start", startDate, "end", endDate)
	return c, nil
}

func (s *Service) DeactivateAll(guildID string) error {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return err
	}
	return repo.DeactivateAll()
}

// Reset is the rollover primitive: it deactivates every cycle and opens a
// fresh one spanning now to now plus seven days, in one transaction. Shift
// totals are not migrated; completed shifts keep their original cycle id.
func (s *Service) Reset(guildID string) (*QuotaCycle, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	start := now.UnixMilli()
	end := now.AddDate(0, 0, defaultCycleDays).UnixMilli()

	c, err := repo.Reset(start, end)
	if err != nil {
		return nil, err
	}
	s.logger.Info("quota cycle reset", "guild_id", guildID, "cycle_id", c.ID, "start", start, "end", end)
	return c, nil
}

// EnsureActive bootstraps a guild store: if no cycle is active, one is
// created spanning now to now plus seven days. Called once at startup per
// guild.
func (s *Service) EnsureActive(guildID string) (*QuotaCycle, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	existing, err := repo.GetActive()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	c, err := repo.Create(now.UnixMilli(), now.AddDate(0, 0, defaultCycleDays).UnixMilli())
	if err != nil {
		return nil, err
	}
	s.logger.Info("quota cycle bootstrapped", "guild_id", guildID, "cycle_id", c.ID)
	return c, nil
}
