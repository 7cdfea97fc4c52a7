package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/focusshield/focusshield/internal/domain"
)

var now = time.Date(2025, time.June, 11, 14, 0, 0, 0, time.Local)

// memStore implements domain.SettingsStore for testing
type memStore struct {
	settings domain.Settings
	loadErr  error
}

func (m *memStore) Load(ctx context.Context) (domain.Settings, error) {
	if m.loadErr != nil {
		return domain.Settings{}, m.loadErr
	}
	return m.settings, nil
}

func (m *memStore) Save(ctx context.Context, s domain.Settings) error {
	m.settings = s
	return nil
}

func newManager(store *memStore) *Manager {
	return NewManagerWithClock(store, func() time.Time { return now }, zap.NewNop())
}

func validZone() domain.Zone {
	return domain.Zone{
		Name:      "Office",
		Location:  domain.GeoLocation{Lat: 52.52, Lon: 13.405},
		Radius:    100,
		Blocklist: []string{"youtube.com"},
		Enabled:   true,
	}
}

func TestCreateZone_AssignsID(t *testing.T) {
	store := &memStore{settings: domain.DefaultSettings()}
	m := newManager(store)

	z, err := m.CreateZone(context.Background(), validZone())
	require.NoError(t, err)

	assert.NotEmpty(t, z.ID)
	require.Len(t, store.settings.Zones, 1)
	assert.Equal(t, z, store.settings.Zones[0])
}

func TestCreateZone_RejectsNonPositiveRadius(t *testing.T) {
	m := newManager(&memStore{settings: domain.DefaultSettings()})

	z := validZone()
	z.Radius = 0
	_, err := m.CreateZone(context.Background(), z)
	assert.Error(t, err)

	z.Radius = -10
	_, err = m.CreateZone(context.Background(), z)
	assert.Error(t, err)
}

func TestCreateZone_RejectsOutOfRangeCoordinates(t *testing.T) {
	m := newManager(&memStore{settings: domain.DefaultSettings()})

	z := validZone()
	z.Location.Lat = 95
	_, err := m.CreateZone(context.Background(), z)
	assert.Error(t, err)
}

func TestCreateZone_RejectsMidnightCrossingSchedule(t *testing.T) {
	m := newManager(&memStore{settings: domain.DefaultSettings()})

	z := validZone()
	z.TimeSchedule = domain.TimeSchedule{
		Enabled:   true,
		StartHour: 22,
		EndHour:   6,
		Days:      []int{1},
	}
	_, err := m.CreateZone(context.Background(), z)
	assert.ErrorContains(t, err, "crosses midnight")
}

func TestCreateZone_EmptyBlocklistAllowed(t *testing.T) {
	// An inert zone is valid; it just never blocks.
	m := newManager(&memStore{settings: domain.DefaultSettings()})

	z := validZone()
	z.Blocklist = nil
	created, err := m.CreateZone(context.Background(), z)
	require.NoError(t, err)
	assert.NotNil(t, created.Blocklist)
	assert.Empty(t, created.Blocklist)
}

func TestUpdateZone(t *testing.T) {
	store := &memStore{settings: domain.DefaultSettings()}
	m := newManager(store)

	z, err := m.CreateZone(context.Background(), validZone())
	require.NoError(t, err)

	z.Name = "Library"
	z.Radius = 25
	require.NoError(t, m.UpdateZone(context.Background(), z))
	assert.Equal(t, "Library", store.settings.Zones[0].Name)
	assert.Equal(t, 25.0, store.settings.Zones[0].Radius)

	z.ID = "missing"
	assert.ErrorIs(t, m.UpdateZone(context.Background(), z), ErrZoneNotFound)
}

func TestDeleteZone(t *testing.T) {
	store := &memStore{settings: domain.DefaultSettings()}
	m := newManager(store)

	z, err := m.CreateZone(context.Background(), validZone())
	require.NoError(t, err)

	require.NoError(t, m.DeleteZone(context.Background(), z.ID))
	assert.Empty(t, store.settings.Zones)

	require.NoError(t, m.DeleteZone(context.Background(), "missing"), "deleting unknown zone is a no-op")
}

func TestToggleZone(t *testing.T) {
	store := &memStore{settings: domain.DefaultSettings()}
	m := newManager(store)

	z, err := m.CreateZone(context.Background(), validZone())
	require.NoError(t, err)

	require.NoError(t, m.ToggleZone(context.Background(), z.ID))
	assert.False(t, store.settings.Zones[0].Enabled)
	require.NoError(t, m.ToggleZone(context.Background(), z.ID))
	assert.True(t, store.settings.Zones[0].Enabled)

	assert.ErrorIs(t, m.ToggleZone(context.Background(), "missing"), ErrZoneNotFound)
}

func TestZoneByID(t *testing.T) {
	store := &memStore{settings: domain.DefaultSettings()}
	m := newManager(store)

	z, err := m.CreateZone(context.Background(), validZone())
	require.NoError(t, err)

	got, err := m.ZoneByID(context.Background(), z.ID)
	require.NoError(t, err)
	assert.Equal(t, z, got)

	_, err = m.ZoneByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrZoneNotFound)
}

func TestSetMonitoring_OnClearsWindows(t *testing.T) {
	s := domain.DefaultSettings()
	s.SnoozeUntil = now.Add(time.Hour).UnixMilli()
	store := &memStore{settings: s}
	m := newManager(store)

	require.NoError(t, m.SetMonitoring(context.Background(), true))
	assert.True(t, store.settings.Monitoring)
	assert.Zero(t, store.settings.SnoozeUntil)
}

func TestSnoozeAndDisableAreExclusive(t *testing.T) {
	s := domain.DefaultSettings()
	s.Monitoring = true
	store := &memStore{settings: s}
	m := newManager(store)

	require.NoError(t, m.Snooze(context.Background(), 10*time.Minute))
	assert.Equal(t, now.Add(10*time.Minute).UnixMilli(), store.settings.SnoozeUntil)
	assert.Zero(t, store.settings.DisabledUntil)

	require.NoError(t, m.Disable(context.Background(), time.Hour))
	assert.Equal(t, now.Add(time.Hour).UnixMilli(), store.settings.DisabledUntil)
	assert.Zero(t, store.settings.SnoozeUntil, "setting one window clears the other")
}

func TestSnooze_RejectsNonPositive(t *testing.T) {
	m := newManager(&memStore{settings: domain.DefaultSettings()})
	assert.Error(t, m.Snooze(context.Background(), 0))
	assert.Error(t, m.Disable(context.Background(), -time.Minute))
}

func TestSetPosition(t *testing.T) {
	store := &memStore{settings: domain.DefaultSettings()}
	m := newManager(store)

	require.NoError(t, m.SetPosition(context.Background(), domain.GeoLocation{Lat: 1, Lon: 2}))
	require.NotNil(t, store.settings.CurrentPosition)
	assert.Equal(t, 1.0, store.settings.CurrentPosition.Lat)

	require.NoError(t, m.ClearPosition(context.Background()))
	assert.Nil(t, store.settings.CurrentPosition)
}

func TestSetTheme(t *testing.T) {
	store := &memStore{settings: domain.DefaultSettings()}
	m := newManager(store)

	require.NoError(t, m.SetTheme(context.Background(), domain.ThemeLight))
	assert.Equal(t, domain.ThemeLight, store.settings.Theme)

	assert.Error(t, m.SetTheme(context.Background(), "neon"))
}

func TestUpdateTimerConfig_PreservesSessionState(t *testing.T) {
	s := domain.DefaultSettings()
	s.PomodoroTimer.State = domain.TimerFocus
	s.PomodoroTimer.CurrentSession = 2
	s.PomodoroTimer.StartedAt = now.UnixMilli()
	store := &memStore{settings: s}
	m := newManager(store)

	cfg := domain.DefaultTimer()
	cfg.FocusDuration = 3000
	require.NoError(t, m.UpdateTimerConfig(context.Background(), cfg))

	got := store.settings.PomodoroTimer
	assert.Equal(t, 3000, got.FocusDuration)
	assert.Equal(t, domain.TimerFocus, got.State)
	assert.Equal(t, 2, got.CurrentSession)
	assert.Equal(t, now.UnixMilli(), got.StartedAt)
}

func TestUpdateTimerConfig_RejectsInvalidDurations(t *testing.T) {
	m := newManager(&memStore{settings: domain.DefaultSettings()})

	cfg := domain.DefaultTimer()
	cfg.FocusDuration = 0
	assert.Error(t, m.UpdateTimerConfig(context.Background(), cfg))
}

func TestMutate_StoreErrorPropagates(t *testing.T) {
	m := newManager(&memStore{loadErr: errors.New("unavailable")})
	assert.Error(t, m.SetMonitoring(context.Background(), true))
}
