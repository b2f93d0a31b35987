package storage_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	cycleDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/quotacycle"
	"github.com/dutytrack/dutytrack/internal/quotacycle"
	cycleStorage "github.com/dutytrack/dutytrack/internal/quotacycle/storage"
)

func TestCycleStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "QuotaCycle Storage Suite")
}

var _ = Describe("Cycle Repository", func() {
	var (
		db   *gorm.DB
		repo quotacycle.Repository
	)

	span := func() (int64, int64) {
		now := time.Now()
		return now.UnixMilli(), now.AddDate(0, 0, 7).UnixMilli()
	}

	countActive := func() int64 {
		var n int64
		Expect(db.Model(&cycleDatamodel.QuotaCycle{}).
			Where("is_active = ?", true).
			Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&cycleDatamodel.QuotaCycle{})
		Expect(err).NotTo(HaveOccurred())

		repo = cycleStorage.NewCycleRepository(db)
	})

	Describe("GetActive", func() {
		It("returns nil on a fresh store", func() {
			c, err := repo.GetActive()
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeNil())
		})

		It("returns the active cycle after creation", func() {
			start, end := span()
			created, err := repo.Create(start, end)
			Expect(err).NotTo(HaveOccurred())

			got, err := repo.GetActive()
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(created.ID))
			Expect(got.IsActive).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("leaves exactly one active cycle", func() {
			start, end := span()
			_, err := repo.Create(start, end)
			Expect(err).NotTo(HaveOccurred())

			fresh, err := repo.Reset(start, end)
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.IsActive).To(BeTrue())
			Expect(countActive()).To(Equal(int64(1)))

			got, err := repo.GetActive()
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(fresh.ID))
		})

		It("works on a fresh store with nothing to deactivate", func() {
			start, end := span()
			fresh, err := repo.Reset(start, end)
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.IsActive).To(BeTrue())
			Expect(countActive()).To(Equal(int64(1)))
		})

		It("keeps old cycles queryable after rollover", func() {
			start, end := span()
			old, err := repo.Create(start, end)
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Reset(start, end)
			Expect(err).NotTo(HaveOccurred())

			var dm cycleDatamodel.QuotaCycle
			Expect(db.First(&dm, old.ID).Error).To(Succeed())
			Expect(dm.IsActive).To(BeFalse())
		})
	})

	Describe("DeactivateAll", func() {
		It("closes every active cycle", func() {
			start, end := span()
			_, err := repo.Create(start, end)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.DeactivateAll()).To(Succeed())
			Expect(countActive()).To(Equal(int64(0)))
		})
	})
})
