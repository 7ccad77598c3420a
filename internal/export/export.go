// Package export copies a finished dataset into object storage.
//
// Buckets are addressed by gocloud URL (s3://, file://, mem://), so the
// same code serves S3-compatible stores and local testing.
package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"

	"github.com/607011/hibpdl/pkg/hashcount"
)

// Upload streams the dataset at path into bucket under key. The file must
// be a whole number of records; a dataset truncated by a crash is refused
// rather than published. The progress callback, if non-nil, receives the
// cumulative byte count.
func Upload(ctx context.Context, bucket *blob.Bucket, key, path string, progress func(written int64)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("export: open dataset: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("export: stat dataset: %w", err)
	}
	if info.Size()%hashcount.RecordSize != 0 {
		return fmt.Errorf("export: %s: %w", path, hashcount.ErrTruncated)
	}

	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("export: create writer for %s: %w", key, err)
	}

	var written int64
	buf := make([]byte, 1<<20)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				w.Close()
				return fmt.Errorf("export: write %s: %w", key, err)
			}
			written += int64(n)
			if progress != nil {
				progress(written)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			w.Close()
			return fmt.Errorf("export: read dataset: %w", readErr)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("export: commit %s: %w", key, err)
	}
	return nil
}
