package hashcount

import (
	"bufio"
	"fmt"
	"os"
)

// Writer appends records to a dataset file.
//
// Writes are buffered; call Flush to force buffered records and file
// metadata to stable storage. A checkpoint must never be written before
// the batch it names has been flushed.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
	n   int64 // records written since open
}

// NewWriter opens the dataset at path for appending, creating it if needed.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("hashcount: open dataset: %w", err)
	}
	return &Writer{
		f:   f,
		buf: bufio.NewWriterSize(f, 1<<20),
	}, nil
}

// WriteRecords appends records in order.
func (w *Writer) WriteRecords(records []Record) error {
	var scratch [RecordSize]byte
	for _, r := range records {
		r.Encode(scratch[:])
		if _, err := w.buf.Write(scratch[:]); err != nil {
			return fmt.Errorf("hashcount: write record: %w", err)
		}
		w.n++
	}
	return nil
}

// Flush drains the buffer and fsyncs the file.
func (w *Writer) Flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("hashcount: flush dataset: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return fmt.Errorf("hashcount: sync dataset: %w", err)
	}
	return nil
}

// Written returns the number of records written through this writer.
func (w *Writer) Written() int64 {
	return w.n
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
