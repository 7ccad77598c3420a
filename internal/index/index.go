// Package index maintains a BadgerDB lookup index over a dataset.
//
// The dataset file is sorted per batch but not globally, so answering
// "how often was this password breached?" from the file alone would mean
// a full scan. Build loads every record into a key-value store keyed by
// the raw digest, after which Lookup is a point read.
package index

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v3"

	"github.com/607011/hibpdl/pkg/hashcount"
)

// Open opens (or creates) the index database at dir.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", dir, err)
	}
	return db, nil
}

// Build streams every record from r into db. The progress callback, if
// non-nil, is invoked with a running record count. Returns the number of
// records indexed.
func Build(db *badger.DB, r *hashcount.Reader, progress func(n int64)) (int64, error) {
	wb := db.NewWriteBatch()
	defer wb.Cancel()

	var n int64
	var value [4]byte
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}

		binary.BigEndian.PutUint32(value[:], rec.Count)
		key := make([]byte, hashcount.DigestSize)
		copy(key, rec.Digest[:])
		val := make([]byte, 4)
		copy(val, value[:])
		if err := wb.Set(key, val); err != nil {
			return n, fmt.Errorf("index: set record %d: %w", n, err)
		}

		n++
		if progress != nil && n%100000 == 0 {
			progress(n)
		}
	}

	if err := wb.Flush(); err != nil {
		return n, fmt.Errorf("index: flush: %w", err)
	}
	if progress != nil {
		progress(n)
	}
	return n, nil
}

// Lookup returns the occurrence count for a digest. The second return is
// false when the digest is not in the index.
func Lookup(db *badger.DB, digest hashcount.Digest) (uint32, bool, error) {
	var count uint32
	var found bool
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(digest[:])
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 4 {
				return fmt.Errorf("index: malformed value for %s", digest)
			}
			count = binary.BigEndian.Uint32(val)
			found = true
			return nil
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("index: lookup %s: %w", digest, err)
	}
	return count, found, nil
}
