package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/607011/hibpdl/internal/export"
)

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var (
		input     string
		bucketURL string
		key       string
		quiet     bool
	)
	fs.StringVar(&input, "i", "hash+count.bin", "dataset `file` to export")
	fs.StringVar(&input, "input", "hash+count.bin", "dataset `file` to export")
	fs.StringVar(&bucketURL, "bucket", "", "destination bucket `URL` (s3://, file://)")
	fs.StringVar(&key, "key", "", "object key, defaults to the dataset file name")
	fs.BoolVar(&quiet, "q", false, "suppress the progress display")
	fs.Parse(args)

	if bucketURL == "" {
		fmt.Fprintln(os.Stderr, "export: -bucket is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if key == "" {
		key = input
	}

	info, err := os.Stat(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitGeneralError
	}

	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: open bucket %s: %v\n", bucketURL, err)
		return ExitStorageError
	}
	defer bucket.Close()

	var progress func(int64)
	if !quiet {
		bar := progressbar.DefaultBytes(info.Size(), "uploading")
		progress = func(written int64) { bar.Set64(written) }
	}

	if err := export.Upload(ctx, bucket, key, input, progress); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitStorageError
	}

	fmt.Fprintf(os.Stderr, "exported %s (%s) to %s\n",
		key, humanize.Bytes(uint64(info.Size())), bucketURL)
	return ExitSuccess
}
