package index

import (
	"path/filepath"
	"testing"

	"github.com/607011/hibpdl/pkg/hashcount"
)

func writeDataset(t *testing.T, records []hashcount.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hash+count.bin")
	w, err := hashcount.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteRecords(records); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestBuildAndLookup(t *testing.T) {
	records := make([]hashcount.Record, 50)
	for i := range records {
		records[i].Digest[0] = byte(i)
		records[i].Digest[19] = byte(i * 3)
		records[i].Count = uint32(i * 11)
	}
	path := writeDataset(t, records)

	db, err := Open(filepath.Join(t.TempDir(), "index"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	r, err := hashcount.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	n, err := Build(db, r, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if n != 50 {
		t.Errorf("Build indexed %d records, want 50", n)
	}

	for i, rec := range records {
		count, found, err := Lookup(db, rec.Digest)
		if err != nil {
			t.Fatalf("Lookup %d: %v", i, err)
		}
		if !found {
			t.Fatalf("record %d not found", i)
		}
		if count != rec.Count {
			t.Errorf("record %d: count = %d, want %d", i, count, rec.Count)
		}
	}
}

func TestLookupMissing(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "index"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var digest hashcount.Digest
	digest[0] = 0xde
	_, found, err := Lookup(db, digest)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Error("found a digest that was never indexed")
	}
}
