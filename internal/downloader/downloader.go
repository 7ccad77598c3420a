package downloader

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/607011/hibpdl/internal/checkpoint"
	"github.com/607011/hibpdl/internal/hibp"
	"github.com/607011/hibpdl/internal/progress"
	"github.com/607011/hibpdl/pkg/hashcount"
)

// DefaultStep is the default batch width in prefix values.
const DefaultStep = 0x40

// recordsPerGroupEstimate sizes buffers; a range holds about a thousand
// hashes and a group covers 16 ranges.
const recordsPerGroupEstimate = 16 * 1000

// Fetcher issues one range query. *hibp.Client implements it.
type Fetcher interface {
	Range(ctx context.Context, prefix string) ([]byte, error)
}

// Options configures a download run.
type Options struct {
	// First and Last bound the prefix range [First, Last) to fetch.
	// Last defaults to MaxPrefix.
	First uint32
	Last  uint32

	// Step is the batch width. Default: DefaultStep.
	Step uint32

	// Workers is the size of the per-batch worker pool.
	// Default: max(GOMAXPROCS, 4).
	Workers int

	// Output is the dataset file path. Records are appended batch by
	// batch.
	Output string

	// Client issues the range queries. Default: hibp.NewClient with
	// default options.
	Client Fetcher

	// Checkpoint records completed batches. Optional; without it the
	// run is not resumable.
	Checkpoint *checkpoint.Manager

	// Reporter receives progress and diagnostics. Optional.
	Reporter *progress.Reporter

	// RetryBackoff is the pause before retrying a failed range query.
	// Default: none, the same prefix is retried immediately.
	RetryBackoff time.Duration

	// RetryMaxBackoff caps the pause when RetryBackoff is doubled on
	// consecutive failures. Zero keeps the pause constant.
	RetryMaxBackoff time.Duration
}

func (o *Options) applyDefaults() {
	if o.Last == 0 {
		o.Last = MaxPrefix
	}
	if o.Step == 0 {
		o.Step = DefaultStep
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
		if o.Workers < 4 {
			o.Workers = 4
		}
	}
	if o.Client == nil {
		o.Client = hibp.NewClient(hibp.DefaultOptions())
	}
	if o.Reporter == nil {
		o.Reporter = progress.NewReporter(progress.Options{Quiet: true, Output: io.Discard})
	}
}

func (o *Options) validate() error {
	if o.First >= o.Last {
		return fmt.Errorf("downloader: empty prefix range [%04x, %04x)", o.First, o.Last)
	}
	if o.Last > MaxPrefix {
		return fmt.Errorf("downloader: prefix range end %04x exceeds %04x", o.Last, uint32(MaxPrefix))
	}
	if o.Output == "" {
		return fmt.Errorf("downloader: output path is required")
	}
	return nil
}

// Run fetches every prefix in [opts.First, opts.Last), batch by batch,
// appending each finalized batch to the output dataset and checkpointing
// it. It returns nil both on completion and on a cooperative stop;
// validation and persistence failures are returned as errors.
func Run(ctx context.Context, stop *Stopper, opts Options) error {
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return err
	}

	for _, b := range Batches(opts.First, opts.Last, opts.Step) {
		if stop.Stopped() || ctx.Err() != nil {
			break
		}
		opts.Reporter.Logf(1, "fetching hashes in [%04x0h, %04xfh] ...", b.First, b.Last-1)

		if err := runBatch(ctx, stop, &opts, b); err != nil {
			return err
		}
	}

	if stop.Stopped() || ctx.Err() != nil {
		return nil
	}
	if opts.Checkpoint != nil {
		if err := opts.Checkpoint.Clear(); err != nil {
			return err
		}
	}
	return nil
}

// runBatch drains one batch through the worker pool and, unless the run
// was stopped, flushes and checkpoints it. An interrupted batch is
// abandoned whole.
func runBatch(ctx context.Context, stop *Stopper, opts *Options, b Batch) error {
	queue := NewQueue(b.First, b.Last)
	store := NewStore(queue.Len() * recordsPerGroupEstimate)

	w := &worker{
		queue:      queue,
		store:      store,
		stop:       stop,
		client:     opts.Client,
		reporter:   opts.Reporter,
		backoff:    opts.RetryBackoff,
		maxBackoff: opts.RetryMaxBackoff,
	}

	workers := opts.Workers
	if n := queue.Len(); n < workers {
		workers = n
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}
	wg.Wait()

	if stop.Stopped() || ctx.Err() != nil {
		return nil
	}

	records := store.Finalize()
	opts.Reporter.Logf(1, "writing %d entries to %s ...", len(records), opts.Output)
	if err := writeBatch(opts, b, records); err != nil {
		return err
	}
	return nil
}

// writeBatch appends the finalized records and records the batch in the
// checkpoint. The flush happens before the checkpoint write, keeping the
// two mutually consistent at every point between batches.
func writeBatch(opts *Options, b Batch, records []hashcount.Record) error {
	writer, err := hashcount.NewWriter(opts.Output)
	if err != nil {
		return err
	}
	if err := writer.WriteRecords(records); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	if opts.Checkpoint == nil {
		return nil
	}
	return opts.Checkpoint.Save(checkpoint.Checkpoint{
		First:  b.First,
		Last:   b.Last,
		Output: opts.Output,
	})
}

// worker drains the queue of one batch. All fields are shared with the
// other workers of the pool except the per-group local buffer.
type worker struct {
	queue      *Queue
	store      *Store
	stop       *Stopper
	client     Fetcher
	reporter   *progress.Reporter
	backoff    time.Duration
	maxBackoff time.Duration
}

func (w *worker) run(ctx context.Context) {
	for {
		if w.stop.Stopped() || ctx.Err() != nil {
			return
		}
		group, ok := w.queue.Pop()
		if !ok {
			return
		}

		local := make([]hashcount.Record, 0, recordsPerGroupEstimate)
		failures := 0
		for nibble := 0; nibble <= 0xf; {
			// A stop here abandons the group's fetched-but-unmerged
			// records; the group is refetched whole on resume.
			if w.stop.Stopped() || ctx.Err() != nil {
				return
			}
			prefix := group + string(hexUpper[nibble])

			body, err := w.client.Range(ctx, prefix)
			if err != nil {
				// Retry the same nibble until it succeeds; an
				// incomplete group is never accepted.
				w.reporter.Errorf("range %s: %v", prefix, err)
				failures++
				w.pause(failures)
				continue
			}

			failures = 0
			local = append(local, hibp.ParseRange(prefix, body)...)
			nibble++
		}

		w.store.Merge(local)
		w.reporter.GroupCompleted(len(local))
	}
}

// pause sleeps between retries: the configured backoff, doubled per
// consecutive failure when a cap is set.
func (w *worker) pause(failures int) {
	if w.backoff <= 0 {
		return
	}
	delay := w.backoff
	if w.maxBackoff > 0 {
		for i := 1; i < failures && delay < w.maxBackoff; i++ {
			delay *= 2
		}
		if delay > w.maxBackoff {
			delay = w.maxBackoff
		}
	}
	time.Sleep(delay)
}
