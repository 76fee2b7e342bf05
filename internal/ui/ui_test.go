package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/i18n"
	"github.com/tartampluch/go-together/internal/journal"
	"github.com/tartampluch/go-together/internal/server"
	"github.com/tartampluch/go-together/internal/store/memory"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates calendar.ContactFetcher using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, src calendar.Source) (io.ReadCloser, error) {
	args := m.Called(ctx, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockTray implements minimal system tray functionality for headless testing.
type MockTray struct {
	Menu *fyne.Menu
}

func (m *MockTray) SetSystemTrayMenu(menu *fyne.Menu) {
	m.Menu = menu
}

func (m *MockTray) SetSystemTrayIcon(icon fyne.Resource) {}
func (m *MockTray) SetSystemTrayWindow(w fyne.Window)    {}

// fakeTicker never fires; tests only observe the initial publish.
type fakeTicker struct{ c chan time.Time }

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               {}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

type testEnv struct {
	app     *TogetherApp
	fetcher *MockFetcher
	tray    *MockTray
	tickers *atomic.Int32
}

// setupTestApp initializes a headless fyne app over an in-memory journal pinned to
// Sat 2024-06-15 10:00 UTC.
func setupTestApp(t *testing.T) testEnv {
	t.Helper()
	keyring.MockInit()

	a := test.NewApp()
	t.Cleanup(a.Quit)

	clock := MockClock{CurrentTime: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)}
	svc := journal.NewService(memory.New(), journal.WithClock(clock), journal.WithLocation(time.UTC))

	tickers := &atomic.Int32{}
	n := engine.NewNotifier(
		engine.WithClock(clock),
		engine.WithTicker(func(time.Duration) engine.Ticker {
			tickers.Add(1)
			return &fakeTicker{c: make(chan time.Time)}
		}),
	)
	t.Cleanup(n.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := NewTogetherApp(a, ctx, svc, n, i18n.MustNew(config.DefaultLanguage))
	fetcher := new(MockFetcher)
	app.Fetcher = fetcher

	tray := &MockTray{}
	app.Tray = tray
	app.setupTrayMenu()

	return testEnv{app: app, fetcher: fetcher, tray: tray, tickers: tickers}
}

func onboard(t *testing.T, app *TogetherApp) {
	t.Helper()
	_, err := app.Journal.Onboard(context.Background(), "Alice", "Bob", "2023-06-20")
	require.NoError(t, err)
}

// -----------------------------------------------------------------------------
// Tray
// -----------------------------------------------------------------------------

func TestTrayMenu_Setup(t *testing.T) {
	env := setupTestApp(t)

	require.NotNil(t, env.tray.Menu)
	assert.Equal(t, "还没有开始计时", env.app.TrayStatusItem.Label)
	assert.Equal(t, "打开计时器", env.app.TrayOpenItem.Label)
	assert.Equal(t, "刷新", env.app.TrayRefreshItem.Label)
	assert.Equal(t, "退出", env.app.TrayQuitItem.Label)
	assert.True(t, env.app.TrayQuitItem.IsQuit)
}

func TestTrayStatusUpdate_Logic(t *testing.T) {
	env := setupTestApp(t)

	env.app.updateTrayStatus(10)
	assert.Equal(t, "在一起 10 天", env.app.TrayStatusItem.Label)

	env.app.updateTrayStatus(-1)
	assert.Equal(t, "还没有开始计时", env.app.TrayStatusItem.Label)
}

// -----------------------------------------------------------------------------
// Refresh
// -----------------------------------------------------------------------------

func TestRefresh_NotOnboarded(t *testing.T) {
	env := setupTestApp(t)

	require.NoError(t, env.app.Refresh(false))
	assert.False(t, env.app.Notifier.Running())
	assert.Equal(t, "还没有开始计时", env.app.TrayStatusItem.Label)
}

func TestRefresh_StartsCounter(t *testing.T) {
	env := setupTestApp(t)
	onboard(t, env.app)

	require.NoError(t, env.app.Refresh(false))
	require.True(t, env.app.Notifier.Running())

	assert.Eventually(t, func() bool {
		return env.app.TrayStatusItem.Label == "在一起 361 天"
	}, time.Second, 10*time.Millisecond)

	p, upcoming, e, counting := env.app.snapshot()
	assert.True(t, counting)
	assert.Equal(t, "Alice", p.MyName)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 5, upcoming[0].Next.DaysUntil)
	assert.Equal(t, int64(361), e.TotalDays)

	// Same start date: the subscription is kept.
	require.NoError(t, env.app.Refresh(false))
	assert.Equal(t, int32(1), env.tickers.Load())

	// New start date: restarted.
	start := "2024-06-01"
	_, _, err := env.app.Journal.UpdateProfile(context.Background(), journal.ProfileUpdate{StartDate: &start})
	require.NoError(t, err)
	require.NoError(t, env.app.Refresh(true))
	assert.Equal(t, int32(2), env.tickers.Load())
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), env.app.Notifier.Anchor())
}

func TestRefresh_RebuildsFeed(t *testing.T) {
	env := setupTestApp(t)
	onboard(t, env.app)

	gen := calendar.NewGenerator(time.UTC, config.DefaultReminder)
	gen.Clock = MockClock{CurrentTime: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)}
	env.app.Feed = server.NewFeed(env.app.Journal, gen, server.NewCalendarServer("0", nil), nil)

	require.NoError(t, env.app.Refresh(false))
	assert.True(t, env.app.Feed.Server.Ready())
	assert.True(t, env.app.Notifier.Running(), "the feed does not own the notifier here")
}

// -----------------------------------------------------------------------------
// Counter window
// -----------------------------------------------------------------------------

func TestCounterWindow(t *testing.T) {
	env := setupTestApp(t)
	onboard(t, env.app)
	require.NoError(t, env.app.Refresh(false))

	env.app.ShowCounterWindow()
	require.NotNil(t, env.app.counterWindow)
	require.NotNil(t, env.app.counter)
	first := env.app.counterWindow

	env.app.refreshCounter()
	cv := env.app.counter
	assert.Equal(t, "Alice ❤ Bob", cv.couple.Text)
	assert.Equal(t, "从 2023-06-20 开始", cv.since.Text)
	assert.Equal(t, "第 361 天", cv.total.Text)
	assert.Equal(t, "0年12月1天", cv.breakdown.Text)
	assert.Equal(t, "10:00:00", cv.clock.Text)
	assert.Len(t, cv.upcoming, 1)
	assert.True(t, cv.table.Visible())
	assert.False(t, cv.empty.Visible())

	// Singleton.
	env.app.ShowCounterWindow()
	assert.Same(t, first, env.app.counterWindow)

	env.app.counterWindow.Close()
	assert.Nil(t, env.app.counterWindow)
	assert.Nil(t, env.app.counter)
}

func TestCounterWindow_NotOnboarded(t *testing.T) {
	env := setupTestApp(t)
	require.NoError(t, env.app.Refresh(false))

	env.app.ShowCounterWindow()
	cv := env.app.counter
	assert.Equal(t, "我 ❤ TA", cv.couple.Text)
	assert.Contains(t, cv.since.Text, "together init")
	assert.False(t, cv.table.Visible())
	assert.True(t, cv.empty.Visible())
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func TestSaveSettings_Onboards(t *testing.T) {
	env := setupTestApp(t)
	gen := calendar.NewGenerator(time.UTC, config.DefaultReminder)
	env.app.Feed = server.NewFeed(env.app.Journal, gen, server.NewCalendarServer("0", nil), nil)

	sw := env.app.newSettingsWidgets()
	sw.myName.SetText("Alice")
	sw.partnerName.SetText("Bob")
	sw.startDate.SetText("2023-06-20")
	sw.modeSelect.SetSelected("CardDAV 地址")
	sw.urlEntry.SetText("https://dav.example.com/me.vcf")
	sw.userEntry.SetText("alice")
	sw.passEntry.SetText("s3cret")
	sw.reminderDays.SetText("3")

	require.NoError(t, env.app.saveSettings(sw))

	p, err := env.app.Journal.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2023-06-20", p.StartDate)
	assert.True(t, env.app.Notifier.Running())

	prefs := env.app.Preferences
	assert.Equal(t, config.SourceModeWeb, prefs.String(config.PrefSourceMode))
	assert.Equal(t, "https://dav.example.com/me.vcf", prefs.String(config.PrefCardDAVURL))
	assert.Equal(t, 3, prefs.Int(config.PrefReminderDays))
	assert.Equal(t, "-P3D", gen.Reminder)

	pass, err := calendar.LoadPassword("alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pass)

	// The next form is pre-filled from what was saved.
	again := env.app.newSettingsWidgets()
	assert.Equal(t, "Alice", again.myName.Text)
	assert.Equal(t, "s3cret", again.passEntry.Text)
	assert.Equal(t, "3", again.reminderDays.Text)
}

func TestSaveSettings_EmptyReminderDisables(t *testing.T) {
	env := setupTestApp(t)
	gen := calendar.NewGenerator(time.UTC, config.DefaultReminder)
	env.app.Feed = server.NewFeed(env.app.Journal, gen, server.NewCalendarServer("0", nil), nil)

	sw := env.app.newSettingsWidgets()
	sw.myName.SetText("Alice")
	require.NoError(t, env.app.saveSettings(sw))

	assert.Empty(t, gen.Reminder)
	assert.False(t, env.app.Notifier.Running(), "no start date, nothing to count")
}

func TestSaveSettings_InvalidStartDate(t *testing.T) {
	env := setupTestApp(t)

	sw := env.app.newSettingsWidgets()
	sw.startDate.SetText("someday")
	assert.Error(t, env.app.saveSettings(sw))

	p, err := env.app.Journal.Profile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, p.StartDate)
}

// -----------------------------------------------------------------------------
// Contacts
// -----------------------------------------------------------------------------

const addressBook = "BEGIN:VCARD\nVERSION:3.0\nFN:Carol\nBDAY:1992-07-01\nEND:VCARD\n" +
	"BEGIN:VCARD\nVERSION:4.0\nFN:Dan\nBDAY:--12-24\nANNIVERSARY:20150912\nEND:VCARD\n"

func TestImportContacts_Web(t *testing.T) {
	env := setupTestApp(t)
	src := calendar.Source{URL: "https://dav.example.com/me.vcf", User: "alice", Pass: "pw"}
	env.fetcher.On("Fetch", mock.Anything, src).
		Return(io.NopCloser(strings.NewReader(addressBook)), nil).Twice()

	n, err := env.app.ImportContacts(src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// A second import adds nothing.
	n, err = env.app.ImportContacts(src)
	require.NoError(t, err)
	assert.Zero(t, n)
	env.fetcher.AssertExpectations(t)

	_, upcoming, _, _ := env.app.snapshot()
	require.Len(t, upcoming, 3)
	assert.Equal(t, "Carol", upcoming[0].Name)
}

func TestImportContacts_LocalFile(t *testing.T) {
	env := setupTestApp(t)
	path := filepath.Join(t.TempDir(), "contacts"+config.ExtVCF)
	require.NoError(t, os.WriteFile(path, []byte(addressBook), 0o600))

	n, err := env.app.ImportContacts(calendar.Source{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	env.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestImportContacts_NoSource(t *testing.T) {
	env := setupTestApp(t)
	_, err := env.app.ImportContacts(calendar.Source{})
	assert.Error(t, err)
}
