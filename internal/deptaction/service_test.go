package deptaction_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dutytrack/dutytrack/internal"
	"github.com/dutytrack/dutytrack/internal/deptaction"
)

func TestDeptAction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DeptAction Suite")
}

// Mock repository for testing
type mockActionRepository struct {
	actions        map[int64]*deptaction.DepartmentAction
	nextID         int64
	createError    error
	updateMsgError error
}

func newMockActionRepository() *mockActionRepository {
	return &mockActionRepository{
		actions: make(map[int64]*deptaction.DepartmentAction),
		nextID:  1,
	}
}

func (m *mockActionRepository) Create(a *deptaction.DepartmentAction) error {
	if m.createError != nil {
		return m.createError
	}
	if a.ActionType.Durable() {
		for _, existing := range m.actions {
			if existing.TargetUserID == a.TargetUserID && existing.IsActive {
				return deptaction.ErrLeaveAlreadyActive
			}
		}
	}
	a.ID = m.nextID
	m.nextID++
	m.actions[a.ID] = a
	return nil
}

func (m *mockActionRepository) GetByID(actionID int64) (*deptaction.DepartmentAction, error) {
	a, ok := m.actions[actionID]
	if !ok {
		return nil, deptaction.ErrActionNotFound
	}
	return a, nil
}

func (m *mockActionRepository) GetActiveLeaveForUser(userID string) (*deptaction.DepartmentAction, error) {
	for _, a := range m.actions {
		if a.TargetUserID == userID && a.IsActive {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockActionRepository) GetAllActiveLeaves() ([]*deptaction.DepartmentAction, error) {
	var out []*deptaction.DepartmentAction
	for _, a := range m.actions {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActionRepository) GetExpiredLeaves(nowMillis int64) ([]*deptaction.DepartmentAction, error) {
	var out []*deptaction.DepartmentAction
	for _, a := range m.actions {
		if a.IsActive && a.EndDate != nil && *a.EndDate <= nowMillis {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActionRepository) Remove(actionID, removedAt int64, removerUserID, removerUsername *string) (bool, error) {
	a, ok := m.actions[actionID]
	if !ok || !a.IsActive {
		return false, nil
	}
	a.IsActive = false
	a.RemovedAt = &removedAt
	a.RemovedByUserID = removerUserID
	a.RemovedByUsername = removerUsername
	return true, nil
}

func (m *mockActionRepository) UpdateMessageID(actionID int64, messageID string) (bool, error) {
	if m.updateMsgError != nil {
		return false, m.updateMsgError
	}
	a, ok := m.actions[actionID]
	if !ok {
		return false, nil
	}
	a.MessageID = &messageID
	return true, nil
}

func (m *mockActionRepository) GetUserHistory(userID string, limit int) ([]*deptaction.DepartmentAction, error) {
	var out []*deptaction.DepartmentAction
	for _, a := range m.actions {
		if a.TargetUserID == userID {
			out = append(out, a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockActionProvider struct {
	repo deptaction.Repository
	err  error
}

func (p *mockActionProvider) ForGuild(guildID string) (deptaction.Repository, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.repo, nil
}

type mockActionAnnouncer struct {
	created     []int64
	removed     []int64
	autoFlags   []bool
	messageRef  string
	createError error
}

func (a *mockActionAnnouncer) ActionCreated(ctx context.Context, guildID string, act *deptaction.DepartmentAction) (string, error) {
	if a.createError != nil {
		return "", a.createError
	}
	a.created = append(a.created, act.ID)
	return a.messageRef, nil
}

func (a *mockActionAnnouncer) LeaveRemoved(ctx context.Context, guildID string, act *deptaction.DepartmentAction, autoExpired bool) error {
	a.removed = append(a.removed, act.ID)
	a.autoFlags = append(a.autoFlags, autoExpired)
	return nil
}

var _ = Describe("DeptAction Service", func() {
	var (
		repo      *mockActionRepository
		announcer *mockActionAnnouncer
		service   *deptaction.Service
		ctx       context.Context
	)

	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	strPtr := func(s string) *string { return &s }
	futureMillis := func(d time.Duration) *int64 {
		ms := time.Now().Add(d).UnixMilli()
		return &ms
	}

	loaInput := func() deptaction.CreateActionInput {
		return deptaction.CreateActionInput{
			ActionType:     deptaction.ActionLOA,
			TargetUserID:   "member-1",
			TargetUsername: "Casey",
			AdminUserID:    "admin-1",
			AdminUsername:  "Morgan",
			Notes:          strPtr("family travel"),
			EndDate:        futureMillis(72 * time.Hour),
		}
	}

	BeforeEach(func() {
		repo = newMockActionRepository()
		announcer = &mockActionAnnouncer{messageRef: "msg-123"}
		service = deptaction.NewService(&mockActionProvider{repo: repo}, announcer, lg)
		ctx = context.Background()
	})

	Describe("CreateAction", func() {
		It("activates a durable status immediately", func() {
			action, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())
			Expect(action.IsActive).To(BeTrue())
			Expect(action.CreatedAt).To(BeNumerically(">", 0))
		})

		It("records a point-in-time action as inactive", func() {
			in := loaInput()
			in.ActionType = deptaction.ActionPromotion
			in.EndDate = nil
			in.PreviousRank = strPtr("Officer")
			in.NewRank = strPtr("Sergeant")

			action, err := service.CreateAction(ctx, "guild-1", in)
			Expect(err).NotTo(HaveOccurred())
			Expect(action.IsActive).To(BeFalse())
		})

		It("treats every durable type the same way", func() {
			for i, at := range deptaction.DurableTypes() {
				in := loaInput()
				in.ActionType = at
				in.TargetUserID = "member-" + string(rune('a'+i))
				action, err := service.CreateAction(ctx, "guild-1", in)
				Expect(err).NotTo(HaveOccurred())
				Expect(action.IsActive).To(BeTrue(), "type %s should activate", at)
			}
		})

		It("refuses a second active status for the same user", func() {
			_, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())

			in := loaInput()
			in.ActionType = deptaction.ActionSuspension
			_, err = service.CreateAction(ctx, "guild-1", in)
			Expect(err).To(MatchError(deptaction.ErrLeaveAlreadyActive))
		})

		It("attaches the announcement message reference", func() {
			action, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())
			Expect(action.MessageID).NotTo(BeNil())
			Expect(*action.MessageID).To(Equal("msg-123"))
		})

		It("keeps the row when announcing fails", func() {
			announcer.createError = errors.New("log channel gone")
			action, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())
			Expect(action.ID).To(BeNumerically(">", 0))
			Expect(action.MessageID).To(BeNil())
		})

		It("keeps the row when the message reference write fails", func() {
			repo.updateMsgError = errors.New("disk full")
			action, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())
			Expect(action.MessageID).To(BeNil())
		})

		It("rejects an end date on a point-in-time type", func() {
			in := loaInput()
			in.ActionType = deptaction.ActionWarning
			_, err := service.CreateAction(ctx, "guild-1", in)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an end date in the past", func() {
			in := loaInput()
			past := time.Now().Add(-time.Hour).UnixMilli()
			in.EndDate = &past
			_, err := service.CreateAction(ctx, "guild-1", in)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a discharge type on a non-discharge action", func() {
			in := loaInput()
			dt := deptaction.DischargeHonorable
			in.DischargeType = &dt
			_, err := service.CreateAction(ctx, "guild-1", in)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown action type", func() {
			in := loaInput()
			in.ActionType = "VACATION"
			_, err := service.CreateAction(ctx, "guild-1", in)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})
	})

	Describe("RemoveLeave", func() {
		It("deactivates and stamps the remover", func() {
			action, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())

			ok, err := service.RemoveLeave(ctx, "guild-1", action.ID, strPtr("admin-2"), strPtr("Jordan"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			stored := repo.actions[action.ID]
			Expect(stored.IsActive).To(BeFalse())
			Expect(stored.RemovedAt).NotTo(BeNil())
			Expect(*stored.RemovedByUserID).To(Equal("admin-2"))
			Expect(announcer.autoFlags).To(Equal([]bool{false}))
		})

		It("marks a nil remover as a system expiry", func() {
			action, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())

			ok, err := service.RemoveLeave(ctx, "guild-1", action.ID, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			stored := repo.actions[action.ID]
			Expect(stored.RemovedByUserID).To(BeNil())
			Expect(announcer.autoFlags).To(Equal([]bool{true}))
		})

		It("reports false for a missing action", func() {
			ok, err := service.RemoveLeave(ctx, "guild-1", 99, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("reports false for an already-removed status", func() {
			action, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())

			ok, err := service.RemoveLeave(ctx, "guild-1", action.ID, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = service.RemoveLeave(ctx, "guild-1", action.ID, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ExpiredLeaves", func() {
		It("returns only active statuses past their end date", func() {
			expired, err := service.CreateAction(ctx, "guild-1", loaInput())
			Expect(err).NotTo(HaveOccurred())
			past := time.Now().Add(-time.Minute).UnixMilli()
			repo.actions[expired.ID].EndDate = &past

			in := loaInput()
			in.TargetUserID = "member-2"
			_, err = service.CreateAction(ctx, "guild-1", in)
			Expect(err).NotTo(HaveOccurred())

			got, err := service.ExpiredLeaves("guild-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal(expired.ID))
		})
	})

	Describe("ActiveLeaveForUser", func() {
		It("returns nil when the user carries no status", func() {
			got, err := service.ActiveLeaveForUser("guild-1", "member-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})
	})
})
