package quotacycle_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dutytrack/dutytrack/internal/quotacycle"
)

func TestQuotaCycle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "QuotaCycle Suite")
}

// Mock repository for testing
type mockCycleRepository struct {
	cycles []*quotacycle.QuotaCycle
	nextID int64
}

func newMockCycleRepository() *mockCycleRepository {
	return &mockCycleRepository{nextID: 1}
}

func (m *mockCycleRepository) GetActive() (*quotacycle.QuotaCycle, error) {
	for _, c := range m.cycles {
		if c.IsActive {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCycleRepository) Create(startDate, endDate int64) (*quotacycle.QuotaCycle, error) {
	c := &quotacycle.QuotaCycle{
		ID:        m.nextID,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}
	m.nextID++
	m.cycles = append(m.cycles, c)
	return c, nil
}

func (m *mockCycleRepository) DeactivateAll() error {
	for _, c := range m.cycles {
		c.IsActive = false
	}
	return nil
}

func (m *mockCycleRepository) Reset(startDate, endDate int64) (*quotacycle.QuotaCycle, error) {
	_ = m.DeactivateAll()
	return m.Create(startDate, endDate)
}

type mockCycleProvider struct{ repo quotacycle.Repository }

func (p *mockCycleProvider) ForGuild(guildID string) (quotacycle.Repository, error) {
	return p.repo, nil
}

var _ = Describe("QuotaCycle Service", func() {
	var (
		repo    *mockCycleRepository
		service *quotacycle.Service
	)

	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockCycleRepository()
		service = quotacycle.NewService(&mockCycleProvider{repo: repo}, lg)
	})

	Describe("EnsureActive", func() {
		It("bootstraps a seven day cycle on a fresh store", func() {
			before := time.Now().UnixMilli()
			c, err := service.EnsureActive("guild-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.IsActive).To(BeTrue())
			Expect(c.StartDate).To(BeNumerically(">=", before))

			spanDays := time.Duration(c.EndDate-c.StartDate) * time.Millisecond / (24 * time.Hour)
			Expect(int(spanDays)).To(Equal(7))
		})

		It("returns the existing cycle when one is active", func() {
			first, err := service.EnsureActive("guild-1")
			Expect(err).NotTo(HaveOccurred())

			second, err := service.EnsureActive("guild-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(repo.cycles).To(HaveLen(1))
		})
	})

	Describe("Reset", func() {
		It("rolls over to a fresh seven day cycle", func() {
			old, err := service.EnsureActive("guild-1")
			Expect(err).NotTo(HaveOccurred())

			fresh, err := service.Reset("guild-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.ID).NotTo(Equal(old.ID))
			Expect(old.IsActive).To(BeFalse())
			Expect(fresh.IsActive).To(BeTrue())
		})
	})

	Describe("ActiveCycle", func() {
		It("returns nil before bootstrap", func() {
			c, err := service.ActiveCycle("guild-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeNil())
		})
	})
})
