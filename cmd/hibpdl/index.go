package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/607011/hibpdl/internal/index"
	"github.com/607011/hibpdl/pkg/hashcount"
)

func runIndex(args []string) int {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	var (
		input string
		dbDir string
		quiet bool
	)
	fs.StringVar(&input, "i", "hash+count.bin", "dataset `file` to index")
	fs.StringVar(&input, "input", "hash+count.bin", "dataset `file` to index")
	fs.StringVar(&dbDir, "db", "hibpdl-index", "index database `directory`")
	fs.BoolVar(&quiet, "q", false, "suppress the progress display")
	fs.Parse(args)

	r, err := hashcount.OpenReader(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitGeneralError
	}
	defer r.Close()

	db, err := index.Open(dbDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitStorageError
	}
	defer db.Close()

	var progress func(int64)
	if !quiet {
		bar := progressbar.Default(r.Total(), "indexing")
		progress = func(n int64) { bar.Set64(n) }
	}

	n, err := index.Build(db, r, progress)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitStorageError
	}

	fmt.Fprintf(os.Stderr, "indexed %s records into %s\n", humanize.Comma(n), dbDir)
	return ExitSuccess
}
