package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitLocked       = 3
	ExitStorageError = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Invoking without a subcommand runs a fetch, so the classic
	// `hibpdl -o file.bin` form keeps working.
	command := "fetch"
	cmdArgs := args
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command = args[0]
		cmdArgs = args[1:]
	}

	switch command {
	case "fetch":
		return runFetch(cmdArgs)
	case "export":
		return runExport(cmdArgs)
	case "index":
		return runIndex(cmdArgs)
	case "lookup":
		return runLookup(cmdArgs)
	case "verify":
		return runVerify(cmdArgs)
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: hibpdl [command] [options]

Commands:
  fetch     Download the full hash keyspace to a binary dataset (default)
  export    Copy a finished dataset into object storage
  index     Build a lookup index from a dataset
  lookup    Query the lookup index by password or hash
  verify    Check a dataset's integrity and print statistics

Run 'hibpdl <command> -h' for command-specific help.`)
}
