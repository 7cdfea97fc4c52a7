// Package main is the CLI entry point for shieldd.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/focusshield/focusshield/internal/config"
	"github.com/focusshield/focusshield/internal/daemon"
	"github.com/focusshield/focusshield/internal/domain"
	"github.com/focusshield/focusshield/internal/engine"
	"github.com/focusshield/focusshield/internal/infra"
	"github.com/focusshield/focusshield/internal/notify"
	"github.com/focusshield/focusshield/internal/settings"
	"github.com/focusshield/focusshield/internal/stats"
	"github.com/focusshield/focusshield/internal/store"
	"github.com/focusshield/focusshield/internal/timer"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shieldd",
	Short: "Focus shield - blocks distracting sites by geofence or Pomodoro timer",
	Long: `shieldd decides whether navigations to configured domains should be
blocked, based on geofenced zones (block when you are at the office or
library) or an active Pomodoro focus session. The daemon keeps the timer
honest across restarts; the other commands manage zones, the timer, and
monitoring state.`,
	Version: Version,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the tick daemon in the foreground",
	Long: `Runs the background loop that completes Pomodoro sessions on schedule.
Remaining time is computed from absolute timestamps, so a suspended or
restarted daemon corrects itself on the next tick.`,
	RunE: runStart,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon, monitoring, and timer status",
	RunE:  runStatus,
}

var decideCmd = &cobra.Command{
	Use:   "decide <url>",
	Short: "Evaluate one URL against the current rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecide,
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Control the Pomodoro timer",
}

var timerStartCmd = &cobra.Command{
	Use:       "start [focus|short-break|long-break]",
	Short:     "Start a session (focus by default)",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"focus", "short-break", "long-break"},
	RunE:      runTimerStart,
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running session",
	RunE:  runTimerPause,
}

var timerResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused session",
	RunE:  runTimerResume,
}

var timerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the timer and session counter",
	RunE:  runTimerReset,
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show timer state and remaining time",
	RunE:  runTimerStatus,
}

var zoneCmd = &cobra.Command{
	Use:   "zone",
	Short: "Manage geofenced zones",
}

var zoneAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a zone at --lat/--lon with --radius meters",
	Args:  cobra.ExactArgs(1),
	RunE:  runZoneAdd,
}

var zoneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured zones",
	RunE:  runZoneList,
}

var zoneRemoveCmd = &cobra.Command{
	Use:   "remove <zone-id>",
	Short: "Remove a zone",
	Args:  cobra.ExactArgs(1),
	RunE:  runZoneRemove,
}

var zoneToggleCmd = &cobra.Command{
	Use:   "toggle <zone-id>",
	Short: "Enable or disable a zone",
	Args:  cobra.ExactArgs(1),
	RunE:  runZoneToggle,
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Control zone monitoring",
}

var monitorOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Turn zone monitoring on (clears snooze/disable)",
	RunE:  runMonitorOn,
}

var monitorOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn zone monitoring off",
	RunE:  runMonitorOff,
}

var monitorSnoozeCmd = &cobra.Command{
	Use:   "snooze <duration>",
	Short: "Snooze monitoring for a duration (e.g. 30m)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitorSnooze,
}

var monitorDisableCmd = &cobra.Command{
	Use:   "disable <duration>",
	Short: "Disable monitoring for a duration (e.g. 2h)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonitorDisable,
}

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Manage the current position used for zone checks",
}

var positionSetCmd = &cobra.Command{
	Use:   "set <lat> <lon>",
	Short: "Set the current position",
	Args:  cobra.ExactArgs(2),
	RunE:  runPositionSet,
}

var positionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the current position",
	RunE:  runPositionClear,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's block statistics",
	RunE:  runStats,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runVersion,
}

var (
	zoneLat       float64
	zoneLon       float64
	zoneRadius    float64
	zoneBlocklist []string
	zoneAllowlist []string
	statsReset    bool
	jsonOutput    bool
	verbose       bool
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	zoneAddCmd.Flags().Float64Var(&zoneLat, "lat", 0, "Zone center latitude")
	zoneAddCmd.Flags().Float64Var(&zoneLon, "lon", 0, "Zone center longitude")
	zoneAddCmd.Flags().Float64Var(&zoneRadius, "radius", 50, "Zone radius in meters")
	zoneAddCmd.Flags().StringSliceVar(&zoneBlocklist, "block", nil, "Domains to block inside the zone")
	zoneAddCmd.Flags().StringSliceVar(&zoneAllowlist, "allow", nil, "Domains always allowed inside the zone")
	_ = zoneAddCmd.MarkFlagRequired("lat")
	_ = zoneAddCmd.MarkFlagRequired("lon")

	statsCmd.Flags().BoolVar(&statsReset, "reset", false, "Reset today's statistics")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	timerCmd.AddCommand(timerStartCmd, timerPauseCmd, timerResumeCmd, timerResetCmd, timerStatusCmd)
	zoneCmd.AddCommand(zoneAddCmd, zoneListCmd, zoneRemoveCmd, zoneToggleCmd)
	monitorCmd.AddCommand(monitorOnCmd, monitorOffCmd, monitorSnoozeCmd, monitorDisableCmd)
	positionCmd.AddCommand(positionSetCmd, positionClearCmd)

	rootCmd.AddCommand(startCmd, statusCmd, decideCmd, timerCmd, zoneCmd, monitorCmd, positionCmd, statsCmd, versionCmd)
}

// app bundles the wired components every command needs.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	settings domain.SettingsStore
	stats    domain.StatisticsStore
	registry domain.DaemonRegistry
	pm       domain.ProcessManager
	closer   func() error
}

func buildApp(verbose bool) (*app, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, closer: func() error { return nil }}

	if cfg.Encrypted {
		key, err := store.NewKeyFile(cfg.DataDir).Ensure()
		if err != nil {
			return nil, err
		}
		enc, err := store.NewEncryptedStore(cfg.DataDir, key)
		if err != nil {
			return nil, err
		}
		a.settings = enc
		a.stats = enc.Stats()
		a.closer = enc.Close
	} else {
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		a.settings = fs
		a.stats = fs.Stats()
	}

	a.pm = infra.NewProcessManager()
	a.registry = infra.NewPidFileRegistry(cfg.DataDir, a.pm)
	return a, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
	if err := a.closer(); err != nil {
		a.logger.Warn("failed to close store", zap.Error(err))
	}
}

func (a *app) timerService() *timer.Service {
	var notifier domain.Notifier = notify.NopNotifier{}
	if a.cfg.Notifications {
		notifier = notify.NewDesktopNotifier(a.logger)
	}
	return timer.NewService(a.settings, a.stats, notifier, a.logger)
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if err := lvl.Set(level); err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	// Refuse to start a second daemon against the same data directory.
	if pid, alive, err := a.registry.Current(); err == nil && alive {
		return fmt.Errorf("shieldd already running (pid %d)", pid)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := daemon.NewTicker(
		daemon.Config{TickInterval: a.cfg.TickInterval},
		a.timerService(),
		a.registry,
		a.pm,
		a.logger,
	)

	if err := ticker.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	pid, alive, err := a.registry.Current()
	if err != nil {
		return err
	}
	if alive {
		fmt.Printf("daemon:     running (pid %d)\n", pid)
	} else {
		fmt.Println("daemon:     not running")
	}

	s, err := a.settings.Load(cmd.Context())
	if err != nil {
		return err
	}

	now := time.Now()
	ms := engine.MonitoringStatus(s, now)
	switch ms.State {
	case domain.MonitoringActive:
		fmt.Println("monitoring: active")
	case domain.MonitoringIdle:
		fmt.Println("monitoring: off")
	default:
		until := time.UnixMilli(ms.ExpiresAt).Format(time.Kitchen)
		fmt.Printf("monitoring: %s until %s\n", ms.State, until)
	}

	pt := s.PomodoroTimer
	fmt.Printf("timer:      %s", pt.State)
	if pt.State.IsActive() || pt.State == domain.TimerPaused {
		fmt.Printf(" (%s remaining, session %d)", timer.FormatRemaining(timer.Remaining(pt, now)), pt.CurrentSession)
	}
	fmt.Println()
	fmt.Printf("zones:      %d configured\n", len(s.Zones))
	if s.CurrentPosition != nil {
		fmt.Printf("position:   %.5f, %.5f\n", s.CurrentPosition.Lat, s.CurrentPosition.Lon)
	} else {
		fmt.Println("position:   not set")
	}
	return nil
}

func runDecide(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	ev := engine.NewEvaluator(a.settings, stats.NewRecorder(a.stats), a.logger)
	verdict, err := ev.Evaluate(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if verdict.Block {
		fmt.Printf("BLOCK: %s (%s)\n", verdict.Domain, verdict.Reason)
	} else {
		fmt.Printf("allow: %s\n", verdict.Reason)
	}
	return nil
}

func runTimerStart(cmd *cobra.Command, args []string) error {
	target := domain.TimerFocus
	if len(args) == 1 {
		target = domain.TimerState(args[0])
	}

	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	pt, err := a.timerService().Start(cmd.Context(), target)
	if err != nil {
		return err
	}
	fmt.Printf("%s started, %s on the clock\n", pt.State, timer.FormatRemaining(pt.RemainingSeconds))
	return nil
}

func runTimerPause(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	pt, err := a.timerService().Pause(cmd.Context())
	if err != nil {
		return err
	}
	if pt.State != domain.TimerPaused {
		fmt.Println("nothing to pause")
		return nil
	}
	fmt.Printf("paused with %s remaining\n", timer.FormatRemaining(pt.RemainingSeconds))
	return nil
}

func runTimerResume(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	pt, err := a.timerService().Resume(cmd.Context())
	if err != nil {
		return err
	}
	if pt.State == domain.TimerPaused {
		fmt.Println("nothing to resume")
		return nil
	}
	fmt.Printf("%s resumed, %s remaining\n", pt.State, timer.FormatRemaining(timer.Remaining(pt, time.Now())))
	return nil
}

func runTimerReset(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.timerService().Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("timer reset")
	return nil
}

func runTimerStatus(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	svc := a.timerService()
	pt, err := svc.State(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("state:     %s\n", pt.State)
	fmt.Printf("remaining: %s\n", timer.FormatRemaining(timer.Remaining(pt, time.Now())))
	fmt.Printf("session:   %d (long break every %d)\n", pt.CurrentSession, pt.LongBreakInterval)
	return nil
}

func runZoneAdd(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	mgr := settings.NewManager(a.settings, a.logger)
	z, err := mgr.CreateZone(cmd.Context(), domain.Zone{
		Name:         args[0],
		Location:     domain.GeoLocation{Lat: zoneLat, Lon: zoneLon},
		Radius:       zoneRadius,
		Blocklist:    zoneBlocklist,
		Allowlist:    zoneAllowlist,
		TimeSchedule: domain.DefaultSchedule(),
		Enabled:      true,
	})
	if err != nil {
		return err
	}
	fmt.Printf("zone %q created (%s)\n", z.Name, z.ID)
	return nil
}

func runZoneList(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.settings.Load(cmd.Context())
	if err != nil {
		return err
	}
	if len(s.Zones) == 0 {
		fmt.Println("no zones configured")
		return nil
	}
	for _, z := range s.Zones {
		state := "enabled"
		if !z.Enabled {
			state = "disabled"
		}
		fmt.Printf("%s  %-20s %8.0fm  %-8s  blocks %s\n",
			z.ID, z.Name, z.Radius, state, strings.Join(z.Blocklist, ","))
	}
	return nil
}

func runZoneRemove(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	mgr := settings.NewManager(a.settings, a.logger)
	if err := mgr.DeleteZone(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Println("zone removed")
	return nil
}

func runZoneToggle(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	mgr := settings.NewManager(a.settings, a.logger)
	if err := mgr.ToggleZone(cmd.Context(), args[0]); err != nil {
		return err
	}
	z, err := mgr.ZoneByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if z.Enabled {
		fmt.Printf("zone %q enabled\n", z.Name)
	} else {
		fmt.Printf("zone %q disabled\n", z.Name)
	}
	return nil
}

func runMonitorOn(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(mgr *settings.Manager) error {
		if err := mgr.SetMonitoring(cmd.Context(), true); err != nil {
			return err
		}
		fmt.Println("monitoring on")
		return nil
	})
}

func runMonitorOff(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(mgr *settings.Manager) error {
		if err := mgr.SetMonitoring(cmd.Context(), false); err != nil {
			return err
		}
		fmt.Println("monitoring off")
		return nil
	})
}

func runMonitorSnooze(cmd *cobra.Command, args []string) error {
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[0], err)
	}
	return withManager(cmd, func(mgr *settings.Manager) error {
		if err := mgr.Snooze(cmd.Context(), d); err != nil {
			return err
		}
		fmt.Printf("monitoring snoozed for %s\n", d)
		return nil
	})
}

func runMonitorDisable(cmd *cobra.Command, args []string) error {
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[0], err)
	}
	return withManager(cmd, func(mgr *settings.Manager) error {
		if err := mgr.Disable(cmd.Context(), d); err != nil {
			return err
		}
		fmt.Printf("monitoring disabled for %s\n", d)
		return nil
	})
}

func runPositionSet(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q: %w", args[0], err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q: %w", args[1], err)
	}
	return withManager(cmd, func(mgr *settings.Manager) error {
		if err := mgr.SetPosition(cmd.Context(), domain.GeoLocation{Lat: lat, Lon: lon}); err != nil {
			return err
		}
		fmt.Printf("position set to %.5f, %.5f\n", lat, lon)
		return nil
	})
}

func runPositionClear(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(mgr *settings.Manager) error {
		if err := mgr.ClearPosition(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("position cleared")
		return nil
	})
}

func withManager(cmd *cobra.Command, f func(*settings.Manager) error) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()
	return f(settings.NewManager(a.settings, a.logger))
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := buildApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()

	recorder := stats.NewRecorder(a.stats)
	now := time.Now().UnixMilli()

	if statsReset {
		if err := recorder.Reset(cmd.Context(), now); err != nil {
			return err
		}
		fmt.Println("statistics reset")
		return nil
	}

	s, err := recorder.Current(cmd.Context(), now)
	if err != nil {
		return err
	}

	fmt.Printf("blocked today:        %d\n", s.TotalBlocked)
	fmt.Printf("focus sessions:       %d (%s focused)\n",
		s.TimerStats.SessionsCompleted, (time.Duration(s.TimerStats.TotalFocusTime) * time.Second).String())
	fmt.Printf("blocked during focus: %d\n", s.TimerStats.BlockedDuringFocus)
	if len(s.BlockedSites) > 0 {
		fmt.Println("top blocked sites:")
		for _, site := range s.BlockedSites {
			fmt.Printf("  %4d  %s\n", site.Count, site.Domain)
		}
	}
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		out, _ := json.Marshal(map[string]string{
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
		})
		fmt.Println(string(out))
		return
	}
	fmt.Printf("shieldd %s (commit %s, built %s)\n", Version, Commit, BuildTime)
}
