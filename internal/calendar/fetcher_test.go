package calendar_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-together/internal/calendar"
	"github.com/tartampluch/go-together/internal/config"
)

const oneCard = "BEGIN:VCARD\nVERSION:3.0\nFN:Alice\nBDAY:1995-04-12\nEND:VCARD\n"

func TestHTTPFetcher_Fetch_BasicAuth(t *testing.T) {
	src := calendar.Source{User: "me@example.com", Pass: "app-password"}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		assert.True(t, ok, "basic auth expected")
		assert.Equal(t, src.User, u)
		assert.Equal(t, src.Pass, p)
		assert.Equal(t, "x", r.URL.Query().Get("token"))
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		_, _ = io.WriteString(w, oneCard)
	}))
	defer ts.Close()

	src.URL = ts.URL + "/book?token=x"
	rc, err := calendar.NewHTTPFetcher().Fetch(context.Background(), src)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	contacts, err := calendar.ParseContacts(context.Background(), rc)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Alice", contacts[0].Name)
}

func TestHTTPFetcher_Fetch_Anonymous(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		_, _ = io.WriteString(w, oneCard)
	}))
	defer ts.Close()

	rc, err := calendar.NewHTTPFetcher().Fetch(context.Background(), calendar.Source{URL: ts.URL})
	require.NoError(t, err)
	_ = rc.Close()
}

func TestHTTPFetcher_Fetch_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		url     string
		wantErr string
	}{
		{"NotFound", http.StatusNotFound, "", "404"},
		{"ServerError", http.StatusInternalServerError, "", "500"},
		{"Unauthorized", http.StatusUnauthorized, "", config.ErrHTTPStatus},
		{"InvalidURL", 0, string([]byte{0x7f}), config.ErrInvalidURL},
		{"FileScheme", 0, "file:///etc/passwd", config.ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := calendar.Source{URL: tt.url}
			if tt.status != 0 {
				ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
				}))
				defer ts.Close()
				src.URL = ts.URL
			}

			rc, err := calendar.NewHTTPFetcher().Fetch(context.Background(), src)
			require.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPFetcher_Fetch_ContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := calendar.NewHTTPFetcher().Fetch(ctx, calendar.Source{URL: ts.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPFetcher_Fetch_SizeLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat(oneCard, 10))
	}))
	defer ts.Close()

	f := calendar.NewHTTPFetcher()
	f.MaxSize = int64(len(oneCard))

	rc, err := f.Fetch(context.Background(), calendar.Source{URL: ts.URL})
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	_, err = io.Copy(io.Discard, rc)
	var tooLarge *http.MaxBytesError
	assert.ErrorAs(t, err, &tooLarge)
}
