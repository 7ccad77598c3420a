// Package downloader orchestrates the full keyspace fetch.
//
// The 4-nibble prefix space [first, last) is partitioned into batches. For
// each batch, a queue is seeded with one prefix group per value and a pool
// of workers drains it. A worker claims a group, issues the 16 range
// queries for its fifth-nibble expansions, and retries a failed query
// indefinitely; only a group with all 16 responses parsed is merged into
// the batch's shared store, under a single lock acquisition.
//
// When the queue is empty the workers exit, the store is sorted, appended
// to the output dataset, flushed, and the batch recorded in the checkpoint
// file. The checkpoint therefore never names a batch whose records are not
// durably on disk.
//
// # Cancellation
//
// Workers poll a [Stopper] before claiming a group and before every
// request; an in-flight request is allowed to finish. A worker stopped
// mid-group discards its local buffer, so an interrupted batch leaves no
// trace in the store, the output file, or the checkpoint.
package downloader
