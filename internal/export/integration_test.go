//go:build integration

package export_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "gocloud.dev/blob/s3blob"

	"github.com/607011/hibpdl/internal/export"
	"github.com/607011/hibpdl/internal/testutils"
	"github.com/607011/hibpdl/pkg/hashcount"
)

func TestIntegrationUploadToMinio(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records := make([]hashcount.Record, 100_000)
	for i := range records {
		records[i].Digest[0] = byte(i >> 16)
		records[i].Digest[1] = byte(i >> 8)
		records[i].Digest[2] = byte(i)
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

	t.Log("Starting Minio container...")
	env := testutils.StartMinioContainer(t, ctx, "hibpdl-test")
	defer env.Close(ctx)

	bucket, err := env.OpenBucket(ctx)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	if err := export.Upload(ctx, bucket, "datasets/hash+count.bin", path, nil); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	attrs, err := bucket.Attributes(ctx, "datasets/hash+count.bin")
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if want := int64(len(records) * hashcount.RecordSize); attrs.Size != want {
		t.Errorf("uploaded object size = %d, want %d", attrs.Size, want)
	}
}
