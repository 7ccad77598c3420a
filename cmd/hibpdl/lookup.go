package main

import (
	"crypto/sha1"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/607011/hibpdl/internal/index"
	"github.com/607011/hibpdl/pkg/hashcount"
)

func runLookup(args []string) int {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	var dbDir string
	fs.StringVar(&dbDir, "db", "hibpdl-index", "index database `directory`")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "lookup: exactly one password or 40-digit hex digest expected")
		fs.Usage()
		return ExitInvalidArgs
	}
	arg := fs.Arg(0)

	// A 40-digit hex argument is taken as a digest, anything else is
	// hashed as a password.
	digest, err := hashcount.DigestFromHex(arg)
	if err != nil {
		digest = sha1.Sum([]byte(arg))
	}

	db, err := index.Open(dbDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitStorageError
	}
	defer db.Close()

	count, found, err := index.Lookup(db, digest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitStorageError
	}
	if !found {
		fmt.Printf("%s: not found\n", digest)
		return ExitGeneralError
	}

	fmt.Printf("%s: seen %s times\n", digest, humanize.Comma(int64(count)))
	return ExitSuccess
}
