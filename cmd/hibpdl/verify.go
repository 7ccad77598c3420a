package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/607011/hibpdl/pkg/hashcount"
)

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	var input string
	fs.StringVar(&input, "i", "hash+count.bin", "dataset `file` to verify")
	fs.StringVar(&input, "input", "hash+count.bin", "dataset `file` to verify")
	fs.Parse(args)

	r, err := hashcount.OpenReader(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitGeneralError
	}
	defer r.Close()

	var (
		records    int64
		zeroCounts int64
		sortedRuns int64
		topCount   uint32
		topDigest  hashcount.Digest
		prev       hashcount.Record
	)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return ExitGeneralError
		}

		if rec.Count == 0 {
			zeroCounts++
		}
		if rec.Count > topCount {
			topCount = rec.Count
			topDigest = rec.Digest
		}
		// Each append flushes one sorted batch, so the file is a small
		// number of ascending runs. A run count near the record count
		// would indicate a corrupted file.
		if records == 0 || hashcount.Less(rec, prev) {
			sortedRuns++
		}
		prev = rec
		records++
	}

	fmt.Printf("records:      %s\n", humanize.Comma(records))
	fmt.Printf("size:         %s\n", humanize.Bytes(uint64(records*hashcount.RecordSize)))
	fmt.Printf("sorted runs:  %s\n", humanize.Comma(sortedRuns))
	fmt.Printf("zero counts:  %s\n", humanize.Comma(zeroCounts))
	if records > 0 {
		fmt.Printf("top count:    %s (%s)\n", humanize.Comma(int64(topCount)), topDigest)
	}
	return ExitSuccess
}
