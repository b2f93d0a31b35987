package shift

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dutytrack/dutytrack/internal"
)

// nowMillis is a seam for tests that need a fixed clock.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// How many fresh codes the start path draws before giving up. With a 2^48
// candidate space, exhausting this means something is badly wrong.
const maxCodeAttempts = 5

// Repository defines the guild-scoped data access for shifts. The write
// operations are transactional: Create re-checks the one-active-shift
// invariant and code uniqueness inside the insert transaction, End performs
// its read-compute-update as one unit.
type Repository interface {
	Create(s *Shift) error
	End(shiftID int64, endPictureLink string) (*Shift, error)
	GetByID(shiftID int64) (*Shift, error)
	GetByCode(code string) (*Shift, error)
	GetActiveForUser(userID string) (*Shift, error)
	GetAllActive() ([]*Shift, error)
	GetUserShiftsInCycle(userID string, cycleID int64) ([]*Shift, error)
	GetUnitShiftsInCycle(unitRole string, cycleID int64) ([]*Shift, error)
	TotalMinutesForUserInCycle(userID string, cycleID int64) (decimal.Decimal, error)
	UpdateDuration(shiftID int64, minutes decimal.Decimal) (bool, error)
	Delete(shiftID int64) (bool, error)
	DeleteForUserInCycle(userID string, cycleID int64) (int64, error)
	DeleteForUnitInCycle(unitRole string, cycleID int64) (int64, error)
	DeleteAllInCycle(cycleID int64) (int64, error)
}

// Provider hands out the repository for one guild's store.
type Provider interface {
	ForGuild(guildID string) (Repository, error)
}

// Announcer receives shift lifecycle notifications after the state
// transition has committed. Failures are logged and never rolled back into
// ledger state.
type Announcer interface {
	ShiftStarted(ctx context.Context, guildID string, s *Shift) error
	ShiftEnded(ctx context.Context, guildID string, s *Shift) error
}

// Service handles shift ledger business logic.
type Service struct {
	stores    Provider
	announcer Announcer
	cfg       *internal.Config
	logger    *slog.Logger
}

func NewService(stores Provider, announcer Announcer, cfg *internal.Config, logger *slog.Logger) *Service {
	return &Service{
		stores:    stores,
		announcer: announcer,
		cfg:       cfg,
		logger:    logger,
	}
}

// StartShift opens a new active shift for the user. The caller has checked
// for an existing active shift; the store re-checks inside the insert
// transaction, so a race surfaces as ErrShiftAlreadyActive instead of a
// second active row. Code collisions retry with a fresh draw.
func (s *Service) StartShift(ctx context.Context, guildID string, in StartShiftInput) (*Shift, error) {
	if err := in.Validate(); err != nil {
		s.logger.Error("start shift validation failed", "error", err, "guild_id", guildID, "user_id", in.UserID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, internal.NewInternalError("failed to generate shift code", err)
		}

		sh := &Shift{
			ShiftCode:        code,
			UserID:           in.UserID,
			Username:         in.Username,
			UnitRole:         in.UnitRole,
			StartTime:        nowMillis(),
			StartPictureLink: in.StartPictureLink,
			QuotaCycleID:     in.QuotaCycleID,
			IsActive:         true,
		}

		err = repo.Create(sh)
		if err == ErrCodeCollision {
			s.logger.Warn("shift code collision, retrying", "guild_id", guildID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("shift started",
			"guild_id", guildID,
			"shift_id", sh.ID,
			"shift_code", sh.ShiftCode,
			"user_id", sh.UserID,
			"unit", sh.UnitRole)

		if aerr := s.announcer.ShiftStarted(ctx, guildID, sh); aerr != nil {
			s.logger.Error("failed to announce shift start", "error", aerr, "guild_id", guildID, "shift_id", sh.ID)
		}
		return sh, nil
	}

	return nil, internal.NewInternalError("exhausted shift code attempts",
		internal.NewConflictError("shift code space contention", internal.ErrCodeCodeSpaceExhausted))
}

// EndShift closes an active shift, computing its fractional-minute duration.
// Ending a missing or already-ended shift returns ErrShiftNotFound and
// mutates nothing, so a double invocation is harmless.
func (s *Service) EndShift(ctx context.Context, guildID string, shiftID int64, endPictureLink string) (*Shift, error) {
	if !validURL(endPictureLink) {
		return nil, internal.NewValidationError("end picture link must be a valid URL", internal.ErrCodeValidationFailed)
	}

	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	sh, err := repo.End(shiftID, endPictureLink)
	if err != nil {
		return nil, err
	}

	s.logger.Info("shift ended",
		"guild_id", guildID,
		"shift_id", sh.ID,
		"user_id", sh.UserID,
		"duration_minutes", sh.DurationMinutes.String())

	if aerr := s.announcer.ShiftEnded(ctx, guildID, sh); aerr != nil {
		s.logger.Error("failed to announce shift end", "error", aerr, "guild_id", guildID, "shift_id", sh.ID)
	}
	return sh, nil
}

// AutoEndNote is stored in place of the end picture link when the duration
// monitor closes a shift the wearer forgot about.
const AutoEndNote = "AUTO-ENDED: Shift exceeded maximum duration"

// AutoEndShift force-closes a long-running shift on behalf of the system.
// Unlike EndShift it records the auto-end note instead of a picture link.
func (s *Service) AutoEndShift(ctx context.Context, guildID string, shiftID int64) (*Shift, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	sh, err := repo.End(shiftID, AutoEndNote)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("shift auto-ended",
		"guild_id", guildID,
		"shift_id", sh.ID,
		"user_id", sh.UserID,
		"duration_minutes", sh.DurationMinutes.String())

	if aerr := s.announcer.ShiftEnded(ctx, guildID, sh); aerr != nil {
		s.logger.Error("failed to announce shift end", "error", aerr, "guild_id", guildID, "shift_id", sh.ID)
	}
	return sh, nil
}

// ActiveShiftForUser returns the user's running shift, or nil when off duty.
func (s *Service) ActiveShiftForUser(guildID, userID string) (*Shift, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetActiveForUser(userID)
}

func (s *Service) AllActiveShifts(guildID string) ([]*Shift, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetAllActive()
}

func (s *Service) UserShiftsInCycle(guildID, userID string, cycleID int64) ([]*Shift, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetUserShiftsInCycle(userID, cycleID)
}

func (s *Service) UnitShiftsInCycle(guildID, unitRole string, cycleID int64) ([]*Shift, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetUnitShiftsInCycle(unitRole, cycleID)
}

// ShiftByRef resolves an operator-supplied reference: an all-digit string is
// treated as a row id, anything else as a shift code.
func (s *Service) ShiftByRef(guildID, ref string) (*Shift, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return resolveRef(repo, ref)
}

// TotalMinutesForUserInCycle sums completed-shift durations, fractional
// seconds included. Zero when the user has no completed shifts in the cycle.
func (s *Service) TotalMinutesForUserInCycle(guildID, userID string, cycleID int64) (decimal.Decimal, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return decimal.Zero, err
	}
	return repo.TotalMinutesForUserInCycle(userID, cycleID)
}

// ActivityForUser builds the quota snapshot for one user in one cycle.
func (s *Service) ActivityForUser(guildID, userID string, cycleID int64) (*ActivityReport, error) {
	guild, err := s.cfg.Guild(guildID)
	if err != nil {
		return nil, err
	}
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	shifts, err := repo.GetUserShiftsInCycle(userID, cycleID)
	if err != nil {
		return nil, err
	}

	report := &ActivityReport{
		UserID:       userID,
		TotalMinutes: decimal.Zero,
		Shifts:       shifts,
	}
	for _, sh := range shifts {
		report.Username = sh.Username
		report.UnitRole = sh.UnitRole
		if err := sh.CheckConsistent(); err != nil {
			return nil, internal.NewIntegrityError(err.Error(), internal.ErrCodeShiftCorrupted)
		}
		if sh.Completed() {
			report.TotalMinutes = report.TotalMinutes.Add(*sh.DurationMinutes)
		}
	}

	report.QuotaMinutes = guild.QuotaForUnit(report.UnitRole)
	report.QuotaMet = report.TotalMinutes.GreaterThanOrEqual(decimal.NewFromInt(int64(report.QuotaMinutes)))
	return report, nil
}

// UpdateShiftDuration is a supervisor correction. Auditing is the caller's
// responsibility.
func (s *Service) UpdateShiftDuration(guildID, ref string, minutes decimal.Decimal) (*Shift, error) {
	if minutes.IsNegative() {
		return nil, internal.NewValidationError("duration cannot be negative", internal.ErrCodeValidationFailed)
	}

	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	sh, err := resolveRef(repo, ref)
	if err != nil {
		return nil, err
	}
	if sh.IsActive {
		return nil, internal.NewValidationError(
			"cannot correct the duration of an active shift", internal.ErrCodeValidationFailed)
	}

	ok, err := repo.UpdateDuration(sh.ID, minutes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrShiftNotFound
	}

	s.logger.Info("shift duration corrected",
		"guild_id", guildID,
		"shift_id", sh.ID,
		"shift_code", sh.ShiftCode,
		"new_minutes", minutes.String())

	sh.DurationMinutes = &minutes
	return sh, nil
}

// DeleteShift removes a shift outright and returns the deleted record so the
// caller can audit it.
func (s *Service) DeleteShift(guildID, ref string) (*Shift, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	sh, err := resolveRef(repo, ref)
	if err != nil {
		return nil, err
	}

	ok, err := repo.Delete(sh.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrShiftNotFound
	}

	s.logger.Info("shift deleted", "guild_id", guildID, "shift_id", sh.ID, "shift_code", sh.ShiftCode)
	return sh, nil
}

// Quota reset primitives: rows are removed, not archived, so only use these
// behind an explicit operator confirmation.

func (s *Service) DeleteForUserInCycle(guildID, userID string, cycleID int64) (int64, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return 0, err
	}
	n, err := repo.DeleteForUserInCycle(userID, cycleID)
	if err == nil && n > 0 {
		s.logger.Info("user cycle shifts deleted", "guild_id", guildID, "user_id", userID, "cycle_id", cycleID, "count", n)
	}
	return n, err
}

func (s *Service) DeleteForUnitInCycle(guildID, unitRole string, cycleID int64) (int64, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return 0, err
	}
	n, err := repo.DeleteForUnitInCycle(unitRole, cycleID)
	if err == nil && n > 0 {
		s.logger.Info("unit cycle shifts deleted", "guild_id", guildID, "unit", unitRole, "cycle_id", cycleID, "count", n)
	}
	return n, err
}

func (s *Service) DeleteAllInCycle(guildID string, cycleID int64) (int64, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return 0, err
	}
	n, err := repo.DeleteAllInCycle(cycleID)
	if err == nil && n > 0 {
		s.logger.Info("all cycle shifts deleted", "guild_id", guildID, "cycle_id", cycleID, "count", n)
	}
	return n, err
}

func resolveRef(repo Repository, ref string) (*Shift, error) {
	// An all-digit string can be both a row id and a shift code, so the
	// code lookup runs first for anything code-shaped.
	if ValidCode(ref) {
		sh, err := repo.GetByCode(ref)
		if !errors.Is(err, ErrShiftNotFound) {
			return sh, err
		}
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return repo.GetByID(id)
	}
	return nil, ErrShiftNotFound
}
