package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
	"github.com/tartampluch/go-together/internal/engine"
	"github.com/tartampluch/go-together/internal/journal"
	"github.com/tartampluch/go-together/internal/store/memory"
)

type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func newTestFeed(t *testing.T) (*Feed, *journal.Service) {
	t.Helper()
	clock := MockClock{CurrentTime: time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)}

	st := memory.New()
	svc := journal.NewService(st, journal.WithClock(clock), journal.WithLocation(time.UTC))
	gen := calendar.NewGenerator(time.UTC, "")
	gen.Clock = clock
	n := engine.NewNotifier(engine.WithClock(clock))
	t.Cleanup(n.Stop)

	return NewFeed(svc, gen, NewCalendarServer("0", nil), n), svc
}

func TestFeed_RebuildBeforeOnboarding(t *testing.T) {
	f, _ := newTestFeed(t)
	require.NoError(t, f.Rebuild(context.Background()))

	assert.True(t, f.Server.Ready())
	assert.False(t, f.Notifier.Running())

	st, err := f.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Elapsed)
	assert.Equal(t, config.DefaultMyName, st.MyName)
	assert.Empty(t, st.Upcoming)
}

func TestFeed_RebuildTracksProfile(t *testing.T) {
	f, svc := newTestFeed(t)
	ctx := context.Background()

	_, err := svc.Onboard(ctx, "Alice", "Bob", "2023-06-20")
	require.NoError(t, err)
	require.NoError(t, f.Rebuild(ctx))

	require.True(t, f.Notifier.Running())
	assert.Equal(t, time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC), f.Notifier.Anchor())

	w := httptest.NewRecorder()
	f.Server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteStatus, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var st Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "Alice", st.MyName)
	require.NotNil(t, st.Elapsed)
	assert.Equal(t, int64(361), st.Elapsed.TotalDays)
	require.Len(t, st.Upcoming, 1)
	assert.Equal(t, 5, st.Upcoming[0].Next.DaysUntil)
	assert.Equal(t, 1, st.Upcoming[0].Next.Ordinal)
	assert.Equal(t, 3, st.Feed.Events, "2023, 2024 and 2025 occurrences")

	w = httptest.NewRecorder()
	f.Server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
	assert.Contains(t, w.Body.String(), "Alice & Bob")

	// A new start date restarts the notifier on the new anchor.
	_, changed, err := svc.UpdateProfile(ctx, journal.ProfileUpdate{StartDate: strPtr("2024-01-01")})
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, f.Rebuild(ctx))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), f.Notifier.Anchor())

	// Reset stops it.
	require.NoError(t, svc.Reset(ctx))
	require.NoError(t, f.Rebuild(ctx))
	assert.False(t, f.Notifier.Running())
}

func TestFeed_RunRebuildsOnChange(t *testing.T) {
	f, svc := newTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		f.Run(ctx, 0, changes)
		close(done)
	}()

	require.Eventually(t, f.Server.Ready, time.Second, 10*time.Millisecond)

	_, err := svc.AddAnniversary(context.Background(), "Birthday", "1990-06-20", journal.KindBirthday)
	require.NoError(t, err)
	changes <- struct{}{}

	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		f.Server.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, config.RouteCalendar, nil))
		return strings.Contains(w.Body.String(), "Birthday")
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestWatcher_SignalsJournalWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DatabaseFileName+"-wal"), []byte("x"), 0o600))

	select {
	case <-w.Changes:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatcher_StartFailsOnMissingDir(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Error(t, w.Start())
}

func TestIsJournalFile(t *testing.T) {
	assert.True(t, isJournalFile("/data/journal.db"))
	assert.True(t, isJournalFile("/data/journal.db-wal"))
	assert.False(t, isJournalFile("/data/config.toml"))
}

func strPtr(s string) *string { return &s }
