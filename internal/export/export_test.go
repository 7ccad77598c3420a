package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"

	"github.com/607011/hibpdl/pkg/hashcount"
)

func TestUpload(t *testing.T) {
	records := make([]hashcount.Record, 100)
	for i := range records {
		records[i].Digest[0] = byte(i)
		records[i].Count = uint32(i)
	}

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

	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	var lastReported int64
	err = Upload(ctx, bucket, "datasets/hash+count.bin", path, func(written int64) {
		lastReported = written
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	wantSize := int64(100 * hashcount.RecordSize)
	if lastReported != wantSize {
		t.Errorf("progress reported %d bytes, want %d", lastReported, wantSize)
	}

	data, err := bucket.ReadAll(ctx, "datasets/hash+count.bin")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if int64(len(data)) != wantSize {
		t.Fatalf("uploaded %d bytes, want %d", len(data), wantSize)
	}

	got, err := hashcount.Decode(data[:hashcount.RecordSize])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != records[0] {
		t.Errorf("first record = %+v, want %+v", got, records[0])
	}
}

func TestUploadRefusesTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, make([]byte, hashcount.RecordSize+1), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	if err := Upload(ctx, bucket, "bad.bin", path, nil); err == nil {
		t.Error("expected error for truncated dataset")
	}
}

func TestUploadMissingFile(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	if err := Upload(ctx, bucket, "x", filepath.Join(t.TempDir(), "missing.bin"), nil); err == nil {
		t.Error("expected error for missing dataset")
	}
}
