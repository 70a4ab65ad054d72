package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/config"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

func newTestHTTPFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.Default(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func fetchURL(t *testing.T, f *HTTPFetcher, url string) (*types.Response, error) {
	t.Helper()
	req, err := types.NewRequest(url)
	if err != nil {
		t.Fatal(err)
	}
	return f.Fetch(context.Background(), req)
}

func TestHTTPFetcherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("request sent without a User-Agent")
		}
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body>hello</body></html>")
	}))
	defer srv.Close()

	resp, err := fetchURL(t, newTestHTTPFetcher(t), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if string(resp.Body) != "<html><body>hello</body></html>" {
		t.Errorf("Body = %q", resp.Body)
	}
	if resp.ContentType != "text/html" {
		t.Errorf("ContentType = %q", resp.ContentType)
	}
}

func TestHTTPFetcherGzipBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, "compressed payload")
		gz.Close()
	}))
	defer srv.Close()

	resp, err := fetchURL(t, newTestHTTPFetcher(t), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(resp.Body) != "compressed payload" {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestHTTPFetcherRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fetchURL(t, newTestHTTPFetcher(t), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *types.FetchError", err)
	}
	if !fe.IsRateLimited() || !fe.Retryable {
		t.Errorf("FetchError = %+v, want retryable rate limit", fe)
	}
	if fe.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", fe.RetryAfter)
	}
}

func TestHTTPFetcherServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream died", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := fetchURL(t, newTestHTTPFetcher(t), srv.URL)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *types.FetchError", err)
	}
	if fe.StatusCode != http.StatusBadGateway || !fe.Retryable {
		t.Errorf("FetchError = %+v", fe)
	}
}

func TestHTTPFetcherNotFoundIsAResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	resp, err := fetchURL(t, newTestHTTPFetcher(t), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// 404 is a well-formed answer; the caller decides what it means.
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"15", 15 * time.Second},
		{"600", 120 * time.Second}, // clamped
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	if isRetryableError(nil) {
		t.Error("nil must not be retryable")
	}
	if isRetryableError(context.Canceled) {
		t.Error("context cancellation must not be retryable")
	}
	if !isRetryableError(io.ErrUnexpectedEOF) {
		t.Error("unexpected EOF should be retryable")
	}
	reset := &net.OpError{Op: "read", Err: syscall.ECONNRESET}
	if !isRetryableError(reset) {
		t.Error("connection reset should be retryable")
	}
}
