package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tartampluch/go-together/internal/config"
)

// feedSnapshot is one published rendition of the calendar.
type feedSnapshot struct {
	body     []byte
	etag     string
	modified time.Time // truncated to seconds, the resolution of HTTP dates
}

// notModified applies If-None-Match, then If-Modified-Since when no ETag was sent.
func (f *feedSnapshot) notModified(r *http.Request) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == f.etag
	}
	since, err := http.ParseTime(r.Header.Get(config.HeaderIfModifiedSince))
	return err == nil && !f.modified.After(since)
}

// StatusFunc produces the JSON body of the status endpoint.
type StatusFunc func(ctx context.Context) (any, error)

// CalendarServer serves the anniversary feed and a status document on localhost.
type CalendarServer struct {
	// Reads vastly outnumber rebuilds, so the feed sits behind an atomic pointer
	// instead of a lock.
	feed   atomic.Pointer[feedSnapshot]
	Port   string
	Status StatusFunc
}

// NewCalendarServer creates a server; status may be nil to disable /api/status.
func NewCalendarServer(port string, status StatusFunc) *CalendarServer {
	return &CalendarServer{
		Port:   port,
		Status: status,
	}
}

// Router wires the routes. It is exported so tests can drive it through httptest.
func (s *CalendarServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(config.RouteCalendar, s.handleCalendar)
	r.Head(config.RouteCalendar, s.handleCalendar)
	r.Get(config.RouteStatus, s.handleStatus)
	r.Get(config.RouteHealth, s.handleHealth)
	return r
}

// Start listens on 127.0.0.1 and blocks until ctx is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Router(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served feed. Identical content keeps its
// modification time so conditional requests keep answering 304.
func (s *CalendarServer) Update(data []byte) {
	sum := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(sum[:]))
	if prev := s.feed.Load(); prev != nil && prev.etag == etag {
		return
	}

	s.feed.Store(&feedSnapshot{
		body:     data,
		etag:     etag,
		modified: time.Now().UTC().Truncate(time.Second),
	})
	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Ready reports whether a feed has been published.
func (s *CalendarServer) Ready() bool {
	return s.feed.Load() != nil
}

func (s *CalendarServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	f := s.feed.Load()
	if f == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, f.etag)
	h.Set(config.HeaderLastModified, f.modified.Format(http.TimeFormat))

	switch {
	case f.notModified(r):
		w.WriteHeader(http.StatusNotModified)
	case r.Method == http.MethodHead:
		h.Set(config.HeaderContentLength, strconv.Itoa(len(f.body)))
	default:
		if _, err := w.Write(f.body); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

func (s *CalendarServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.Status == nil {
		http.NotFound(w, r)
		return
	}
	body, err := s.Status(r.Context())
	if err != nil {
		slog.Error(config.HTTPMsgInternalErr,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: config.HTTPMsgInternalErr, Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *CalendarServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": config.HTTPMsgOK,
		"feed":   s.Ready(),
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
