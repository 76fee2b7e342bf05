package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/tartampluch/go-together/internal/config"
)

// Source names where contacts come from: a local vCard file or a remote address book.
type Source struct {
	Path string
	URL  string
	User string
	Pass string
}

// ContactFetcher downloads the address book a Source points at.
type ContactFetcher interface {
	Fetch(ctx context.Context, src Source) (io.ReadCloser, error)
}

// Open returns the contact stream. A local path wins over a URL.
func (s Source) Open(ctx context.Context, f ContactFetcher) (io.ReadCloser, error) {
	switch {
	case s.Path != "":
		return os.Open(s.Path)
	case s.URL == "":
		return nil, errors.New(config.ErrSourceMissing)
	case f == nil:
		return nil, errors.New(config.ErrFetcherMissing)
	}
	return f.Fetch(ctx, s)
}

// redacted drops the query string, which CardDAV providers sometimes use for tokens.
func redacted(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
}

// HTTPFetcher is the ContactFetcher for CardDAV and plain HTTP vCard exports.
type HTTPFetcher struct {
	Client  *http.Client
	MaxSize int64
}

// NewHTTPFetcher returns a fetcher with the standard timeout and body cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: config.HTTPTimeout},
		MaxSize: config.MaxHTTPResponseSize,
	}
}

// Fetch GETs src.URL with basic auth when credentials are set. Reading past MaxSize
// fails with *http.MaxBytesError rather than truncating the last card.
func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) (io.ReadCloser, error) {
	u, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %q", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(config.LogKeyComponent, config.CompFetcher, config.LogKeyURL, redacted(u))
	log.Debug(config.MsgFetchStart, config.LogKeyUser, src.User)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrBuildRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if src.User != "" || src.Pass != "" {
		req.SetBasicAuth(src.User, src.Pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, config.LogKeyStatus, resp.StatusCode)
		return nil, fmt.Errorf("%s: %s", config.ErrHTTPStatus, resp.Status)
	}
	return http.MaxBytesReader(nil, resp.Body, f.MaxSize), nil
}
