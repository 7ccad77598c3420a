package hashcount

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTruncated is returned when a dataset's size is not a whole number
// of records.
var ErrTruncated = errors.New("hashcount: dataset size is not a multiple of the record size")

// Reader streams records from a dataset file.
type Reader struct {
	f     *os.File
	buf   *bufio.Reader
	total int64
}

// OpenReader opens the dataset at path and verifies its size is a whole
// number of records.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hashcount: open dataset: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("hashcount: stat dataset: %w", err)
	}
	if info.Size()%RecordSize != 0 {
		f.Close()
		return nil, fmt.Errorf("%w (%d bytes)", ErrTruncated, info.Size())
	}
	return &Reader{
		f:     f,
		buf:   bufio.NewReaderSize(f, 1<<20),
		total: info.Size() / RecordSize,
	}, nil
}

// Total returns the number of records in the dataset.
func (r *Reader) Total() int64 {
	return r.total
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var scratch [RecordSize]byte
	if _, err := io.ReadFull(r.buf, scratch[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("hashcount: read record: %w", err)
	}
	return Decode(scratch[:])
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ReadFile reads a whole dataset into memory.
func ReadFile(path string) ([]Record, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	records := make([]Record, 0, r.Total())
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}
