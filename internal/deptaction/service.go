package deptaction

import (
	"context"
	"log/slog"
	"time"

	"github.com/dutytrack/dutytrack/internal"
)

// Repository defines guild-scoped data access for department actions.
// Create is transactional: for durable types the no-second-active-status
// check runs inside the insert transaction.
type Repository interface {
	Create(a *DepartmentAction) error
	GetByID(actionID int64) (*DepartmentAction, error)
	GetActiveLeaveForUser(userID string) (*DepartmentAction, error)
	GetAllActiveLeaves() ([]*DepartmentAction, error)
	GetExpiredLeaves(nowMillis int64) ([]*DepartmentAction, error)
	Remove(actionID, removedAt int64, removerUserID, removerUsername *string) (bool, error)
	UpdateMessageID(actionID int64, messageID string) (bool, error)
	GetUserHistory(userID string, limit int) ([]*DepartmentAction, error)
}

// Provider hands out the repository for one guild's store.
type Provider interface {
	ForGuild(guildID string) (Repository, error)
}

// Announcer publishes a creation to the guild's department log and returns
// an opaque reference to the logged message, attached to the row afterwards.
// The two-phase shape is deliberate: the message cannot exist before the
// row does.
type Announcer interface {
	ActionCreated(ctx context.Context, guildID string, a *DepartmentAction) (messageRef string, err error)
	LeaveRemoved(ctx context.Context, guildID string, a *DepartmentAction, autoExpired bool) error
}

// Service handles the leave/status state machine and the personnel log.
type Service struct {
	stores    Provider
	announcer Announcer
	logger    *slog.Logger
}

func NewService(stores Provider, announcer Announcer, logger *slog.Logger) *Service {
	return &Service{stores: stores, announcer: announcer, logger: logger}
}

// CreateAction records a personnel action. Durable statuses activate
// immediately and are subject to the one-active-status-per-user rule;
// point-in-time records are inserted inactive and never change. Announcement
// failure never unwinds the row; the message reference write is best-effort.
func (s *Service) CreateAction(ctx context.Context, guildID string, in CreateActionInput) (*DepartmentAction, error) {
	if err := in.Validate(); err != nil {
		s.logger.Error("department action validation failed", "error", err, "guild_id", guildID, "target", in.TargetUserID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}

	action := &DepartmentAction{
		ActionType:     in.ActionType,
		TargetUserID:   in.TargetUserID,
		TargetUsername: in.TargetUsername,
		AdminUserID:    in.AdminUserID,
		AdminUsername:  in.AdminUsername,
		Notes:          in.Notes,
		IsActive:       in.ActionType.Durable(),
		CreatedAt:      time.Now().UnixMilli(),
		EndDate:        in.EndDate,
		PreviousRank:   in.PreviousRank,
		NewRank:        in.NewRank,
		PreviousUnit:   in.PreviousUnit,
		NewUnit:        in.NewUnit,
		DischargeType:  in.DischargeType,
	}

	if err := repo.Create(action); err != nil {
		return nil, err
	}

	s.logger.Info("department action created",
		"guild_id", guildID,
		"action_id", action.ID,
		"action_type", action.ActionType,
		"target", action.TargetUserID,
		"admin", action.AdminUserID)

	messageRef, aerr := s.announcer.ActionCreated(ctx, guildID, action)
	if aerr != nil {
		s.logger.Error("failed to announce department action", "error", aerr, "guild_id", guildID, "action_id", action.ID)
		return action, nil
	}
	if messageRef != "" {
		if ok, merr := repo.UpdateMessageID(action.ID, messageRef); merr != nil || !ok {
			s.logger.Warn("failed to attach message reference", "error", merr, "guild_id", guildID, "action_id", action.ID)
		} else {
			action.MessageID = &messageRef
		}
	}
	return action, nil
}

// ActiveLeaveForUser returns the user's single active durable status, or nil
// when they carry none. This is the precondition gate callers run before
// CreateAction on a durable type.
func (s *Service) ActiveLeaveForUser(guildID, userID string) (*DepartmentAction, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetActiveLeaveForUser(userID)
}

func (s *Service) AllActiveLeaves(guildID string) ([]*DepartmentAction, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetAllActiveLeaves()
}

// ExpiredLeaves returns the still-active durable statuses whose end date has
// passed. Every durable type with an end date is covered, not just LOA.
func (s *Service) ExpiredLeaves(guildID string) ([]*DepartmentAction, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	return repo.GetExpiredLeaves(time.Now().UnixMilli())
}

// RemoveLeave deactivates a durable status on behalf of an admin. A nil
// remover identity marks a system removal (expiry). Returns false when the
// action does not exist or is already inactive.
func (s *Service) RemoveLeave(ctx context.Context, guildID string, actionID int64, removerUserID, removerUsername *string) (bool, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return false, err
	}

	action, err := repo.GetByID(actionID)
	if err != nil {
		if err == ErrActionNotFound {
			return false, nil
		}
		return false, err
	}

	removedAt := time.Now().UnixMilli()
	ok, err := repo.Remove(actionID, removedAt, removerUserID, removerUsername)
	if err != nil || !ok {
		return ok, err
	}

	s.logger.Info("durable status removed",
		"guild_id", guildID,
		"action_id", actionID,
		"action_type", action.ActionType,
		"target", action.TargetUserID,
		"system_removal", removerUserID == nil)

	action.IsActive = false
	action.RemovedAt = &removedAt
	action.RemovedByUserID = removerUserID
	action.RemovedByUsername = removerUsername

	if aerr := s.announcer.LeaveRemoved(ctx, guildID, action, removerUserID == nil); aerr != nil {
		s.logger.Error("failed to announce status removal", "error", aerr, "guild_id", guildID, "action_id", actionID)
	}
	return true, nil
}

// UpdateMessageRef attaches the announcement message reference to an action;
// the second phase of the create-announce-attach sequence, retryable by the
// caller.
func (s *Service) UpdateMessageRef(guildID string, actionID int64, messageID string) (bool, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return false, err
	}
	return repo.UpdateMessageID(actionID, messageID)
}

// UserHistory returns the user's personnel record, newest first.
func (s *Service) UserHistory(guildID, userID string, limit int) ([]*DepartmentAction, error) {
	repo, err := s.stores.ForGuild(guildID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 25
	}
	return repo.GetUserHistory(userID, limit)
}
