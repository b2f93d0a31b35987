package announce_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/dutytrack/dutytrack/internal/announce"
	"github.com/dutytrack/dutytrack/internal/core/events"
	"github.com/dutytrack/dutytrack/internal/deptaction"
	"github.com/dutytrack/dutytrack/internal/shift"
)

func TestAnnounce(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Announce Suite")
}

var _ = Describe("EventAnnouncer", func() {
	var (
		bus       *events.EventBus
		announcer *announce.EventAnnouncer
		ctx       context.Context
		lg        *slog.Logger
	)

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(lg)
		announcer = announce.NewEventAnnouncer(bus, lg)
		ctx = context.Background()
	})

	activeShift := func() *shift.Shift {
		return &shift.Shift{
			ID:        1,
			ShiftCode: "ABC12345",
			UserID:    "u1",
			Username:  "alice",
			UnitRole:  "patrol",
			StartTime: time.Now().UnixMilli(),
			IsActive:  true,
		}
	}

	Describe("ActionCreated", func() {
		loa := &deptaction.DepartmentAction{
			ID:             7,
			ActionType:     deptaction.ActionLOA,
			TargetUserID:   "u1",
			TargetUsername: "alice",
			AdminUserID:    "admin-1",
			IsActive:       true,
		}

		It("returns the event id as the message reference", func() {
			var published events.Event
			bus.Subscribe(events.EventTypeActionCreated, func(_ context.Context, ev events.Event) error {
				published = ev
				return nil
			})

			ref, err := announcer.ActionCreated(ctx, "guild-1", loa)
			Expect(err).NotTo(HaveOccurred())
			Expect(published).NotTo(BeNil())
			Expect(ref).To(Equal(published.EventID()))
		})

		It("surfaces a subscriber failure to the caller", func() {
			bus.Subscribe(events.EventTypeActionCreated, func(_ context.Context, _ events.Event) error {
				return errors.New("channel unavailable")
			})

			ref, err := announcer.ActionCreated(ctx, "guild-1", loa)
			Expect(err).To(HaveOccurred())
			Expect(ref).To(BeEmpty())
		})
	})

	Describe("ShiftEnded", func() {
		It("flags an auto-ended shift", func() {
			marked := make(chan bool, 1)
			bus.Subscribe(events.EventTypeShiftEnded, func(_ context.Context, ev events.Event) error {
				ended := ev.(*events.ShiftEndedEvent)
				marked <- ended.AutoEnded
				return nil
			})

			sh := activeShift()
			sh.IsActive = false
			note := shift.AutoEndNote
			sh.EndPictureLink = &note
			minutes := decimal.NewFromInt(780)
			sh.DurationMinutes = &minutes

			Expect(announcer.ShiftEnded(ctx, "guild-1", sh)).To(Succeed())
			Eventually(marked).Should(Receive(BeTrue()))
		})

		It("does not flag an operator-ended shift", func() {
			marked := make(chan bool, 1)
			bus.Subscribe(events.EventTypeShiftEnded, func(_ context.Context, ev events.Event) error {
				ended := ev.(*events.ShiftEndedEvent)
				marked <- ended.AutoEnded
				return nil
			})

			sh := activeShift()
			sh.IsActive = false
			link := "https://proof.example/end.png"
			sh.EndPictureLink = &link
			minutes := decimal.NewFromFloat(45.5)
			sh.DurationMinutes = &minutes

			Expect(announcer.ShiftEnded(ctx, "guild-1", sh)).To(Succeed())
			Eventually(marked).Should(Receive(BeFalse()))
		})
	})

	Describe("RegisterLogSink", func() {
		It("subscribes the sink to every duty event type", func() {
			counting := events.NewEventBus(lg)
			announce.RegisterLogSink(counting, lg)

			a := announce.NewEventAnnouncer(counting, lg)
			_, err := a.ActionCreated(ctx, "guild-1", &deptaction.DepartmentAction{
				ID:           1,
				ActionType:   deptaction.ActionLOA,
				TargetUserID: "u1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.ShiftStarted(ctx, "guild-1", activeShift())).To(Succeed())
		})

		It("covers the exact set the announcer publishes", func() {
			Expect(announce.DutyEventTypes).To(ConsistOf(
				events.EventTypeShiftStarted,
				events.EventTypeShiftEnded,
				events.EventTypeActionCreated,
				events.EventTypeLeaveRemoved,
			))
		})
	})
})
