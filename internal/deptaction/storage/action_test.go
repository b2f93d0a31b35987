package storage_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	actionDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/deptaction"
	"github.com/dutytrack/dutytrack/internal/deptaction"
	actionStorage "github.com/dutytrack/dutytrack/internal/deptaction/storage"
)

func TestActionStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DeptAction Storage Suite")
}

var _ = Describe("Action Repository", func() {
	var (
		db   *gorm.DB
		repo deptaction.Repository
	)

	strPtr := func(s string) *string { return &s }
	millisPtr := func(t time.Time) *int64 {
		ms := t.UnixMilli()
		return &ms
	}

	newAction := func(actionType deptaction.ActionType, targetUserID string) *deptaction.DepartmentAction {
		a := &deptaction.DepartmentAction{
			ActionType:     actionType,
			TargetUserID:   targetUserID,
			TargetUsername: "Casey",
			AdminUserID:    "admin-1",
			AdminUsername:  "Morgan",
			IsActive:       actionType.Durable(),
			CreatedAt:      time.Now().UnixMilli(),
		}
		if actionType.Durable() {
			a.EndDate = millisPtr(time.Now().Add(72 * time.Hour))
		}
		return a
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&actionDatamodel.DepartmentAction{})
		Expect(err).NotTo(HaveOccurred())

		repo = actionStorage.NewActionRepository(db)
	})

	Describe("Create", func() {
		It("stores a durable status as active", func() {
			a := newAction(deptaction.ActionLOA, "member-1")
			Expect(repo.Create(a)).To(Succeed())
			Expect(a.ID).To(BeNumerically(">", 0))

			got, err := repo.GetActiveLeaveForUser("member-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.ActionType).To(Equal(deptaction.ActionLOA))
		})

		It("refuses a second active durable status for the same user", func() {
			Expect(repo.Create(newAction(deptaction.ActionLOA, "member-1"))).To(Succeed())

			err := repo.Create(newAction(deptaction.ActionSuspension, "member-1"))
			Expect(err).To(MatchError(deptaction.ErrLeaveAlreadyActive))
		})

		It("allows a durable status alongside point-in-time records", func() {
			Expect(repo.Create(newAction(deptaction.ActionWarning, "member-1"))).To(Succeed())
			Expect(repo.Create(newAction(deptaction.ActionPromotion, "member-1"))).To(Succeed())
			Expect(repo.Create(newAction(deptaction.ActionLOA, "member-1"))).To(Succeed())
		})

		It("allows a new status after the previous one was removed", func() {
			first := newAction(deptaction.ActionLOA, "member-1")
			Expect(repo.Create(first)).To(Succeed())

			ok, err := repo.Remove(first.ID, time.Now().UnixMilli(), strPtr("admin-1"), strPtr("Morgan"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			Expect(repo.Create(newAction(deptaction.ActionProbation, "member-1"))).To(Succeed())
		})
	})

	Describe("GetExpiredLeaves", func() {
		It("covers every durable type past its end date", func() {
			users := []string{"m1", "m2", "m3", "m4", "m5"}
			for i, at := range deptaction.DurableTypes() {
				a := newAction(at, users[i])
				a.EndDate = millisPtr(time.Now().Add(-time.Hour))
				Expect(repo.Create(a)).To(Succeed())
			}

			expired, err := repo.GetExpiredLeaves(time.Now().UnixMilli())
			Expect(err).NotTo(HaveOccurred())
			Expect(expired).To(HaveLen(5))
		})

		It("excludes statuses with a future end date", func() {
			Expect(repo.Create(newAction(deptaction.ActionLOA, "member-1"))).To(Succeed())

			expired, err := repo.GetExpiredLeaves(time.Now().UnixMilli())
			Expect(err).NotTo(HaveOccurred())
			Expect(expired).To(BeEmpty())
		})

		It("excludes open-ended statuses", func() {
			a := newAction(deptaction.ActionZTP, "member-1")
			a.EndDate = nil
			Expect(repo.Create(a)).To(Succeed())

			expired, err := repo.GetExpiredLeaves(time.Now().UnixMilli())
			Expect(err).NotTo(HaveOccurred())
			Expect(expired).To(BeEmpty())
		})

		It("excludes already-removed statuses, making the sweep idempotent", func() {
			a := newAction(deptaction.ActionLOA, "member-1")
			a.EndDate = millisPtr(time.Now().Add(-time.Hour))
			Expect(repo.Create(a)).To(Succeed())

			ok, err := repo.Remove(a.ID, time.Now().UnixMilli(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			expired, err := repo.GetExpiredLeaves(time.Now().UnixMilli())
			Expect(err).NotTo(HaveOccurred())
			Expect(expired).To(BeEmpty())
		})
	})

	Describe("Remove", func() {
		It("stamps removal time and remover identity", func() {
			a := newAction(deptaction.ActionAdminLeave, "member-1")
			Expect(repo.Create(a)).To(Succeed())

			removedAt := time.Now().UnixMilli()
			ok, err := repo.Remove(a.ID, removedAt, strPtr("admin-2"), strPtr("Jordan"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			got, err := repo.GetByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsActive).To(BeFalse())
			Expect(*got.RemovedAt).To(Equal(removedAt))
			Expect(*got.RemovedByUserID).To(Equal("admin-2"))
		})

		It("leaves remover columns null for a system expiry", func() {
			a := newAction(deptaction.ActionLOA, "member-1")
			Expect(repo.Create(a)).To(Succeed())

			ok, err := repo.Remove(a.ID, time.Now().UnixMilli(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			got, err := repo.GetByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.RemovedByUserID).To(BeNil())
			Expect(got.RemovedByUsername).To(BeNil())
		})

		It("is a no-op on an already-inactive row", func() {
			a := newAction(deptaction.ActionLOA, "member-1")
			Expect(repo.Create(a)).To(Succeed())

			ok, err := repo.Remove(a.ID, time.Now().UnixMilli(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = repo.Remove(a.ID, time.Now().UnixMilli(), strPtr("admin-1"), strPtr("Morgan"))
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())

			// the system attribution from the first removal survives
			got, err := repo.GetByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.RemovedByUserID).To(BeNil())
		})

		It("reports false for a missing row", func() {
			ok, err := repo.Remove(99, time.Now().UnixMilli(), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("UpdateMessageID", func() {
		It("attaches the reference after creation", func() {
			a := newAction(deptaction.ActionHire, "member-1")
			Expect(repo.Create(a)).To(Succeed())

			ok, err := repo.UpdateMessageID(a.ID, "msg-456")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			got, err := repo.GetByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.MessageID).To(Equal("msg-456"))
		})
	})

	Describe("GetUserHistory", func() {
		It("returns newest first with a limit", func() {
			for i := 0; i < 5; i++ {
				a := newAction(deptaction.ActionWarning, "member-1")
				a.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute).UnixMilli()
				Expect(repo.Create(a)).To(Succeed())
			}

			history, err := repo.GetUserHistory("member-1", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(3))
			Expect(history[0].CreatedAt).To(BeNumerically(">=", history[1].CreatedAt))
			Expect(history[1].CreatedAt).To(BeNumerically(">=", history[2].CreatedAt))
		})
	})
})
