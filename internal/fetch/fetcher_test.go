package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/coreg/internal/util"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { fetchSleepFunc = orig })
	return &slept
}

func newTestFetcher(retries int) *Fetcher {
	return New(&http.Client{Timeout: 5 * time.Second}, Options{
		UserAgent:  "coreg-test",
		MaxRetries: retries,
	})
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "coreg-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	res, err := newTestFetcher(1).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(res.Body) != "<html>ok</html>" || res.ContentType != "text/html" {
		t.Errorf("unexpected result: %q %q", res.Body, res.ContentType)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	slept := noSleep(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	res, err := newTestFetcher(3).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(res.Body) != "done" || calls != 3 {
		t.Errorf("body %q after %d calls", res.Body, calls)
	}
	if len(*slept) != 2 || (*slept)[0] != time.Second || (*slept)[1] != 2*time.Second {
		t.Errorf("backoff = %v", *slept)
	}
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	noSleep(t)
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher(3).Get(context.Background(), srv.URL)
	if err == nil || err.Error() != "unexpected status: 404 404 Not Found" {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("404 was retried %d times", calls)
	}
}

func TestPostFormEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		_, _ = fmt.Fprintf(w, "%s/%s", form.Get("PROGRAM"), form.Get("SEQUENCE"))
	}))
	defer srv.Close()

	form := url.Values{"PROGRAM": {"blastp"}, "SEQUENCE": {"MKLV"}}
	res, err := newTestFetcher(1).PostForm(context.Background(), srv.URL, form)
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}
	if string(res.Body) != "blastp/MKLV" {
		t.Errorf("body = %q", res.Body)
	}
}

func TestRobotsDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := srv.Client()
	f := New(client, Options{
		UserAgent: "coreg-test",
		Robots:    util.NewRobotsChecker(client, "coreg-test"),
	})

	if _, err := f.Get(context.Background(), srv.URL+"/private/page"); !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}
	if _, err := f.Get(context.Background(), srv.URL+"/public"); err != nil {
		t.Errorf("public page: %v", err)
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"500", &StatusError{Code: 500, Status: "500 Internal Server Error"}, true},
		{"503 wrapped", fmt.Errorf("fgd: %w", &StatusError{Code: 503}), true},
		{"429", &StatusError{Code: 429}, true},
		{"404", &StatusError{Code: 404}, false},
		{"403", &StatusError{Code: 403}, false},
		{"transport", &transportError{err: errors.New("connection reset")}, true},
		{"create request", fmt.Errorf("create request: %w", errors.New("bad url")), false},
		{"read body", fmt.Errorf("read body: %w", errors.New("eof")), false},
		{"cancelled", &transportError{err: context.Canceled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableFetchError(tt.err); got != tt.want {
				t.Errorf("isRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
