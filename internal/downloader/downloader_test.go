package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/607011/hibpdl/internal/checkpoint"
	"github.com/607011/hibpdl/internal/hibp"
	"github.com/607011/hibpdl/pkg/hashcount"
)

// rangeBody returns a two-line response whose digests derive from the
// queried prefix, so every range in a run yields distinct records.
func rangeBody(prefix string) string {
	return strings.Repeat("A", 35) + ":1\r\n" + strings.Repeat("B", 35) + ":2\r\n"
}

func newRangeServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		prefix := strings.TrimPrefix(r.URL.Path, "/range/")
		if len(prefix) != 5 {
			t.Errorf("bad prefix in request path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, rangeBody(prefix))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestRunFullRange(t *testing.T) {
	server, calls := newRangeServer(t)

	dir := t.TempDir()
	output := filepath.Join(dir, "hash+count.bin")
	cp := checkpoint.NewManager(filepath.Join(dir, "checkpoint"))

	var stop Stopper
	err := Run(context.Background(), &stop, Options{
		First:      0x0000,
		Last:       0x0008,
		Step:       0x0004,
		Workers:    4,
		Output:     output,
		Client:     hibp.NewClient(hibp.Options{BaseURL: server.URL}),
		Checkpoint: cp,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 8 groups x 16 nibbles, one request each.
	if got := calls.Load(); got != 8*16 {
		t.Errorf("requests = %d, want %d", got, 8*16)
	}

	records, err := hashcount.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(records) != 8*16*2 {
		t.Fatalf("got %d records, want %d", len(records), 8*16*2)
	}

	// Each flushed batch is sorted; the file as a whole need not be.
	perBatch := 4 * 16 * 2
	for i := 0; i < len(records); i += perBatch {
		if !hashcount.IsSorted(records[i : i+perBatch]) {
			t.Errorf("batch starting at record %d not sorted", i)
		}
	}

	// Normal completion removes the checkpoint.
	if _, err := cp.Load(); !errors.Is(err, checkpoint.ErrNoCheckpoint) {
		t.Errorf("checkpoint still present after completion: %v", err)
	}
}

func TestRunRetriesFailedRange(t *testing.T) {
	var mu sync.Mutex
	failed := make(map[string]bool)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		first := !failed[r.URL.Path]
		failed[r.URL.Path] = true
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, strings.Repeat("C", 35)+":3\r\n")
	}))
	defer server.Close()

	output := filepath.Join(t.TempDir(), "out.bin")
	var stop Stopper
	err := Run(context.Background(), &stop, Options{
		First:   0x0000,
		Last:    0x0001,
		Step:    0x0001,
		Workers: 2,
		Output:  output,
		Client:  hibp.NewClient(hibp.Options{BaseURL: server.URL}),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	records, err := hashcount.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Every nibble eventually succeeded exactly once.
	if len(records) != 16 {
		t.Errorf("got %d records, want 16", len(records))
	}
}

type fetcherFunc func(ctx context.Context, prefix string) ([]byte, error)

func (f fetcherFunc) Range(ctx context.Context, prefix string) ([]byte, error) {
	return f(ctx, prefix)
}

func TestRunStopMidBatch(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.bin")
	cp := checkpoint.NewManager(filepath.Join(dir, "checkpoint"))

	var stop Stopper
	fetcher := fetcherFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		// Trigger the stop as soon as the second batch is reached.
		if prefix[:4] >= "0002" {
			stop.Stop()
		}
		return []byte(strings.Repeat("D", 35) + ":4\r\n"), nil
	})

	err := Run(context.Background(), &stop, Options{
		First:      0x0000,
		Last:       0x0004,
		Step:       0x0002,
		Workers:    2,
		Output:     output,
		Client:     fetcher,
		Checkpoint: cp,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The first batch was flushed whole; the interrupted second batch
	// left no trace.
	records, err := hashcount.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(records) != 2*16 {
		t.Errorf("got %d records, want %d", len(records), 2*16)
	}

	got, err := cp.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := checkpoint.Checkpoint{First: 0x0000, Last: 0x0002, Output: output}
	if got != want {
		t.Errorf("checkpoint = %+v, want %+v", got, want)
	}
}

func TestRunStopBeforeFirstBatchCompletes(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.bin")
	cp := checkpoint.NewManager(filepath.Join(dir, "checkpoint"))

	var stop Stopper
	fetcher := fetcherFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		stop.Stop()
		return []byte(strings.Repeat("E", 35) + ":5\r\n"), nil
	})

	err := Run(context.Background(), &stop, Options{
		First:      0x0000,
		Last:       0x0010,
		Step:       0x0010,
		Workers:    2,
		Output:     output,
		Client:     fetcher,
		Checkpoint: cp,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("output file written despite stop before any batch completed")
	}
	if _, err := cp.Load(); !errors.Is(err, checkpoint.ErrNoCheckpoint) {
		t.Errorf("checkpoint written despite stop: %v", err)
	}
}

func TestRunValidation(t *testing.T) {
	var stop Stopper
	tests := []struct {
		name string
		opts Options
	}{
		{"empty range", Options{First: 0x10, Last: 0x10, Output: "out.bin"}},
		{"inverted range", Options{First: 0x20, Last: 0x10, Output: "out.bin"}},
		{"range beyond space", Options{First: 0, Last: MaxPrefix + 1, Output: "out.bin"}},
		{"missing output", Options{First: 0, Last: 0x10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Run(context.Background(), &stop, tt.opts); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRunPersistenceErrorFatal(t *testing.T) {
	fetcher := fetcherFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		return []byte(strings.Repeat("F", 35) + ":6\r\n"), nil
	})

	var stop Stopper
	err := Run(context.Background(), &stop, Options{
		First:   0x0000,
		Last:    0x0001,
		Step:    0x0001,
		Workers: 1,
		Output:  filepath.Join(t.TempDir(), "no-such-dir", "out.bin"),
		Client:  fetcher,
	})
	if err == nil {
		t.Fatal("expected persistence error")
	}
}
