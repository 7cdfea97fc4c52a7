//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/focusshield/focusshield/internal/domain"
	"github.com/focusshield/focusshield/internal/engine"
	"github.com/focusshield/focusshield/internal/settings"
	"github.com/focusshield/focusshield/internal/stats"
	"github.com/focusshield/focusshield/internal/store"
	"github.com/focusshield/focusshield/internal/timer"
)

var _ = Describe("Focus Shield", func() {
	var (
		ctx       context.Context
		tmpDir    string
		now       time.Time
		clock     func() time.Time
		fileStore *store.FileStore
		manager   *settings.Manager
		recorder  *stats.Recorder
		timers    *timer.Service
		evaluator *engine.Evaluator
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		tmpDir, err = os.MkdirTemp("", "shieldd-integration-*")
		Expect(err).NotTo(HaveOccurred())

		now = time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
		clock = func() time.Time { return now }

		fileStore, err = store.NewFileStoreWithClock(tmpDir, clock)
		Expect(err).NotTo(HaveOccurred())

		logger := zap.NewNop()
		manager = settings.NewManagerWithClock(fileStore, clock, logger)
		recorder = stats.NewRecorder(fileStore.Stats())
		timers = timer.NewServiceWithClock(fileStore, fileStore.Stats(), nil, clock, logger)
		evaluator = engine.NewEvaluatorWithClock(fileStore, recorder, clock, logger)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("first run", func() {
		It("allows everything until monitoring is configured", func() {
			verdict, err := evaluator.Evaluate(ctx, "https://www.reddit.com/r/golang")
			Expect(err).NotTo(HaveOccurred())
			Expect(verdict.Block).To(BeFalse())
			Expect(verdict.Reason).To(Equal("monitoring inactive"))
		})
	})

	Describe("zone-based blocking", func() {
		var zone domain.Zone

		BeforeEach(func() {
			Expect(manager.SetMonitoring(ctx, true)).To(Succeed())

			var err error
			zone, err = manager.CreateZone(ctx, domain.Zone{
				Name:         "Office",
				Location:     domain.GeoLocation{Lat: 40.7128, Lon: -74.0060},
				Radius:       100,
				Blocklist:    []string{"reddit.com", "youtube.com"},
				Allowlist:    []string{"stackoverflow.com"},
				TimeSchedule: domain.DefaultSchedule(),
				Enabled:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(zone.ID).NotTo(BeEmpty())
		})

		Context("when inside the zone", func() {
			BeforeEach(func() {
				Expect(manager.SetPosition(ctx, domain.GeoLocation{Lat: 40.7128, Lon: -74.0060})).To(Succeed())
			})

			It("blocks a blocklisted domain and attributes it to the zone", func() {
				verdict, err := evaluator.Evaluate(ctx, "https://www.reddit.com/r/golang")
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.Block).To(BeTrue())
				Expect(verdict.ZoneID).To(Equal(zone.ID))
				Expect(verdict.Domain).To(Equal("reddit.com"))
			})

			It("lets the zone allowlist through", func() {
				verdict, err := evaluator.Evaluate(ctx, "https://stackoverflow.com/questions")
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.Block).To(BeFalse())
			})

			It("records the block in daily statistics", func() {
				_, err := evaluator.Evaluate(ctx, "https://reddit.com/")
				Expect(err).NotTo(HaveOccurred())
				_, err = evaluator.Evaluate(ctx, "https://reddit.com/")
				Expect(err).NotTo(HaveOccurred())

				s, err := recorder.Current(ctx, now.UnixMilli())
				Expect(err).NotTo(HaveOccurred())
				Expect(s.TotalBlocked).To(Equal(2))
				Expect(s.BlockedSites).To(HaveLen(1))
				Expect(s.BlockedSites[0].Domain).To(Equal("reddit.com"))
				Expect(s.BlockedSites[0].Count).To(Equal(2))
				Expect(s.ZoneStats[zone.ID].BlockedCount).To(Equal(2))
			})

			It("stops blocking while monitoring is snoozed", func() {
				Expect(manager.Snooze(ctx, 30*time.Minute)).To(Succeed())

				verdict, err := evaluator.Evaluate(ctx, "https://reddit.com/")
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.Block).To(BeFalse())

				now = now.Add(31 * time.Minute)
				verdict, err = evaluator.Evaluate(ctx, "https://reddit.com/")
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.Block).To(BeTrue())
			})

			It("stops blocking when the zone is toggled off", func() {
				Expect(manager.ToggleZone(ctx, zone.ID)).To(Succeed())

				verdict, err := evaluator.Evaluate(ctx, "https://reddit.com/")
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.Block).To(BeFalse())
			})
		})

		Context("when outside the zone", func() {
			It("allows blocklisted domains", func() {
				Expect(manager.SetPosition(ctx, domain.GeoLocation{Lat: 41.0, Lon: -74.0060})).To(Succeed())

				verdict, err := evaluator.Evaluate(ctx, "https://reddit.com/")
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.Block).To(BeFalse())
			})
		})

		Context("with no known position", func() {
			It("allows blocklisted domains", func() {
				verdict, err := evaluator.Evaluate(ctx, "https://reddit.com/")
				Expect(err).NotTo(HaveOccurred())
				Expect(verdict.Block).To(BeFalse())
				Expect(verdict.Reason).To(Equal("no position"))
			})
		})
	})

	Describe("Pomodoro flow", func() {
		BeforeEach(func() {
			Expect(manager.SetMonitoring(ctx, true)).To(Succeed())
		})

		It("blocks the timer blocklist during focus and credits the session on completion", func() {
			pt, err := timers.Start(ctx, domain.TimerFocus)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt.State).To(Equal(domain.TimerFocus))

			verdict, err := evaluator.Evaluate(ctx, "https://old.reddit.com/r/golang")
			Expect(err).NotTo(HaveOccurred())
			Expect(verdict.Block).To(BeTrue())
			Expect(verdict.FromTimer).To(BeTrue())
			Expect(verdict.Reason).To(Equal("focus session"))

			// Host sleeps through the entire session; the boundary is
			// corrected on the next tick.
			now = now.Add(26 * time.Minute)

			completed, err := timers.CheckCompletion(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(completed).To(BeTrue())

			pt, err = timers.State(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt.State).To(Equal(domain.TimerIdle))
			Expect(pt.CurrentSession).To(Equal(1))

			// A second tick on the same boundary must not double count.
			completed, err = timers.CheckCompletion(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(completed).To(BeFalse())

			s, err := recorder.Current(ctx, now.UnixMilli())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.TimerStats.SessionsCompleted).To(Equal(1))
			Expect(s.TimerStats.TotalFocusTime).To(Equal(1500))
			Expect(s.TimerStats.BlockedDuringFocus).To(Equal(1))
		})

		It("preserves remaining time across pause, resume, and restart", func() {
			_, err := timers.Start(ctx, domain.TimerFocus)
			Expect(err).NotTo(HaveOccurred())

			now = now.Add(10 * time.Minute)
			pt, err := timers.Pause(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt.State).To(Equal(domain.TimerPaused))
			Expect(pt.RemainingSeconds).To(Equal(900))

			// Long paused stretch; no time passes for the session.
			now = now.Add(2 * time.Hour)

			// A fresh store instance over the same directory models a
			// process restart.
			reopened, err := store.NewFileStoreWithClock(tmpDir, clock)
			Expect(err).NotTo(HaveOccurred())
			restarted := timer.NewServiceWithClock(reopened, reopened.Stats(), nil, clock, zap.NewNop())

			pt, err = restarted.Resume(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt.State).To(Equal(domain.TimerFocus))

			remaining, err := restarted.Remaining(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(remaining).To(Equal(900))
		})

		It("allows the blocklist during a break", func() {
			_, err := timers.Start(ctx, domain.TimerShortBreak)
			Expect(err).NotTo(HaveOccurred())

			verdict, err := evaluator.Evaluate(ctx, "https://reddit.com/")
			Expect(err).NotTo(HaveOccurred())
			Expect(verdict.Block).To(BeFalse())
			Expect(verdict.Reason).To(Equal("break in progress"))
		})
	})

	Describe("legacy settings migration", func() {
		It("converts the single-zone shape and persists the result", func() {
			legacy := `{
				"monitoring": true,
				"zone": {"lat": 51.5074, "lon": -0.1278},
				"radius": 75,
				"blocklist": ["news.ycombinator.com"]
			}`
			path := filepath.Join(tmpDir, "settings.json")
			Expect(os.WriteFile(path, []byte(legacy), 0600)).To(Succeed())

			migrated, err := store.NewFileStoreWithClock(tmpDir, clock)
			Expect(err).NotTo(HaveOccurred())

			s, err := migrated.Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Zones).To(HaveLen(1))
			Expect(s.Zones[0].Name).To(Equal("Work Zone"))
			Expect(s.Zones[0].Radius).To(Equal(75.0))
			Expect(s.Zones[0].Blocklist).To(ConsistOf("news.ycombinator.com"))
			Expect(s.Monitoring).To(BeTrue())

			raw, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).NotTo(ContainSubstring(`"radius"`))
			Expect(string(raw)).To(ContainSubstring(`"zones"`))
		})
	})

	Describe("daily statistics reset", func() {
		It("clears counters on the first read of a new day", func() {
			Expect(manager.SetMonitoring(ctx, true)).To(Succeed())
			_, err := manager.CreateZone(ctx, domain.Zone{
				Name:         "Library",
				Location:     domain.GeoLocation{Lat: 48.8566, Lon: 2.3522},
				Radius:       50,
				Blocklist:    []string{"twitter.com"},
				TimeSchedule: domain.DefaultSchedule(),
				Enabled:      true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(manager.SetPosition(ctx, domain.GeoLocation{Lat: 48.8566, Lon: 2.3522})).To(Succeed())

			_, err = evaluator.Evaluate(ctx, "https://twitter.com/home")
			Expect(err).NotTo(HaveOccurred())

			s, err := recorder.Current(ctx, now.UnixMilli())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.TotalBlocked).To(Equal(1))

			now = now.Add(24 * time.Hour)

			s, err = recorder.Current(ctx, now.UnixMilli())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.TotalBlocked).To(BeZero())
			Expect(s.BlockedSites).To(BeEmpty())
		})
	})
})
