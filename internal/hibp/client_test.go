package hibp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientRange(t *testing.T) {
	const body = "1E4C9B93F3F0682250B6CF8331B7EE68FD8:12345\r\n"

	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, UserAgent: "hibpdl-test"})
	got, err := client.Range(context.Background(), "5BAA6")
	if err != nil {
		t.Fatalf("Range: %v", err)
	}

	if string(got) != body {
		t.Errorf("body = %q, want %q", got, body)
	}
	if gotPath != "/range/5BAA6" {
		t.Errorf("path = %q, want /range/5BAA6", gotPath)
	}
	if gotUA != "hibpdl-test" {
		t.Errorf("user agent = %q, want hibpdl-test", gotUA)
	}
}

func TestClientRangeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.Range(context.Background(), "00000")
	if err == nil {
		t.Fatal("expected error for 429")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error type = %T, want *StatusError", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d, want 429", statusErr.Code)
	}
}

func TestClientRangeContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(Options{BaseURL: server.URL})
	if _, err := client.Range(ctx, "00000"); err == nil {
		t.Fatal("expected error after context deadline")
	}
}

func TestClientRangeTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // closed before use

	client := NewClient(Options{BaseURL: server.URL})
	_, err := client.Range(context.Background(), "00000")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !strings.Contains(err.Error(), "00000") {
		t.Errorf("error %q does not name the prefix", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", opts.BaseURL)
	}
	if opts.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", opts.Timeout)
	}
}
