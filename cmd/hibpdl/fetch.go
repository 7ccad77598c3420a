package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/607011/hibpdl/internal/checkpoint"
	"github.com/607011/hibpdl/internal/config"
	"github.com/607011/hibpdl/internal/downloader"
	"github.com/607011/hibpdl/internal/hibp"
	"github.com/607011/hibpdl/internal/progress"
)

// appDirName is the per-user state directory under the home directory.
// It holds the checkpoint and the lock file.
const appDirName = ".hibpdl"

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var (
		output     string
		configPath string
		workers    int
		firstHex   string
		lastHex    string
		stepHex    string
		verbosity  int
		quiet      bool
		yes        bool
	)
	fs.StringVar(&output, "o", "", "output `file` for the hash+count dataset")
	fs.StringVar(&output, "output", "", "output `file` for the hash+count dataset")
	fs.StringVar(&configPath, "config", "", "YAML configuration `file`")
	fs.IntVar(&workers, "t", 0, "number of parallel download `threads`")
	fs.IntVar(&workers, "threads", 0, "number of parallel download `threads`")
	fs.StringVar(&firstHex, "P", "", "first hash `prefix` to fetch (hex)")
	fs.StringVar(&firstHex, "first-prefix", "", "first hash `prefix` to fetch (hex)")
	fs.StringVar(&lastHex, "L", "", "last hash `prefix` to fetch, exclusive (hex)")
	fs.StringVar(&lastHex, "last-prefix", "", "last hash `prefix` to fetch, exclusive (hex)")
	fs.StringVar(&stepHex, "S", "", "prefixes per batch (hex)")
	fs.StringVar(&stepHex, "prefix-step", "", "prefixes per batch (hex)")
	fs.IntVar(&verbosity, "v", 0, "verbosity `level`")
	fs.BoolVar(&quiet, "q", false, "suppress the progress display")
	fs.BoolVar(&quiet, "quiet", false, "suppress the progress display")
	fs.BoolVar(&yes, "y", false, "assume yes on all prompts")
	fs.BoolVar(&yes, "yes", false, "assume yes on all prompts")
	fs.Parse(args)

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return ExitInvalidArgs
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitInvalidArgs
	}
	if err := applyFetchFlags(fs, &cfg, output, workers, firstHex, lastHex, stepHex, verbosity, quiet); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitInvalidArgs
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitInvalidArgs
	}

	appDir, err := ensureAppDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitGeneralError
	}

	lockPath := filepath.Join(appDir, "lock")
	if code, ok := acquireLock(lockPath, yes); !ok {
		return code
	}
	defer os.Remove(lockPath)

	cpManager := checkpoint.NewManager(filepath.Join(appDir, "checkpoint"))
	if code, ok := resolveCheckpoint(cpManager, &cfg, yes); !ok {
		return code
	}

	reporter := progress.NewReporter(progress.Options{
		TotalGroups: int(cfg.LastPrefix - cfg.FirstPrefix),
		Workers:     cfg.Workers,
		Quiet:       cfg.Quiet,
		Verbosity:   cfg.Verbosity,
	})

	var stop downloader.Stopper
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		reporter.Warnf("%s received, finishing the current batch ...", sig)
		stop.Stop()
	}()

	client := hibp.NewClient(hibp.Options{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
	})

	reporter.Start()
	err = downloader.Run(context.Background(), &stop, downloader.Options{
		First:           cfg.FirstPrefix,
		Last:            cfg.LastPrefix,
		Step:            cfg.PrefixStep,
		Workers:         cfg.Workers,
		Output:          cfg.Output,
		Client:          client,
		Checkpoint:      cpManager,
		Reporter:        reporter,
		RetryBackoff:    cfg.Retry.Backoff,
		RetryMaxBackoff: cfg.Retry.MaxBackoff,
	})
	reporter.Finish()
	if err != nil {
		reporter.Errorf("%v", err)
		return ExitStorageError
	}

	if stop.Stopped() {
		reporter.Logf(0, "stopped; resume with the checkpoint in %s", appDir)
	}
	return ExitSuccess
}

// applyFetchFlags copies explicitly set flags onto cfg. Flags outrank the
// config file and the environment.
func applyFetchFlags(fs *flag.FlagSet, cfg *config.Config, output string, workers int, firstHex, lastHex, stepHex string, verbosity int, quiet bool) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "o", "output":
			cfg.Output = output
		case "t", "threads":
			cfg.Workers = workers
		case "P", "first-prefix":
			cfg.FirstPrefix, err = config.ParsePrefix(firstHex, config.MaxPrefix-1)
		case "L", "last-prefix":
			cfg.LastPrefix, err = config.ParsePrefix(lastHex, config.MaxPrefix)
		case "S", "prefix-step":
			cfg.PrefixStep, err = config.ParsePrefix(stepHex, config.MaxPrefix-1)
		case "v":
			cfg.Verbosity = verbosity
		case "q", "quiet":
			cfg.Quiet = quiet
		}
	})
	return err
}

// ensureAppDir creates ~/.hibpdl if needed and returns its path.
func ensureAppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, appDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return dir, nil
}

// acquireLock guards against concurrent runs appending to the same
// dataset. A stale lock from a crashed run can be overridden at the
// prompt or with -y.
func acquireLock(path string, yes bool) (int, bool) {
	if data, err := os.ReadFile(path); err == nil {
		pid := strings.TrimSpace(string(data))
		fmt.Fprintf(os.Stderr, "Another instance (PID %s) appears to be running.\n", pid)
		if !yes && !promptYesNo("Remove the lock and continue anyway? [y/n] ") {
			return ExitLocked, false
		}
		os.Remove(path)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "cannot write lock file %s: %v\n", path, err)
		return ExitGeneralError, false
	}
	return ExitSuccess, true
}

// resolveCheckpoint decides where the run starts. With a checkpoint and a
// matching dataset present the user chooses between resuming, restarting
// from scratch, quitting, or naming an explicit prefix; -y resumes
// without asking. An explicit -P overrides the checkpoint, and without
// one a leftover checkpoint for a different dataset is discarded.
func resolveCheckpoint(m *checkpoint.Manager, cfg *config.Config, yes bool) (int, bool) {
	cp, err := m.Load()
	if errors.Is(err, checkpoint.ErrNoCheckpoint) {
		return checkOverwrite(cfg, yes)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitGeneralError, false
	}

	if cfg.FirstPrefix != 0 {
		// The user asked for an explicit start; leave the checkpoint in
		// place, the next completed batch replaces it anyway.
		return ExitSuccess, true
	}

	if _, statErr := os.Stat(cp.Output); statErr != nil || cp.Output != cfg.Output {
		m.Clear()
		return checkOverwrite(cfg, yes)
	}

	if yes {
		cfg.FirstPrefix = cp.Last
		return ExitSuccess, true
	}

	fmt.Fprintf(os.Stderr, "Found a checkpoint: batch %04x-%04x of %s is complete.\n", cp.First, cp.Last, cp.Output)
	fmt.Fprint(os.Stderr, "Continue from there (y), restart from scratch (r), quit (q), or enter a 4-digit hex prefix: ")
	answer := readLine()
	switch answer {
	case "y", "Y", "":
		cfg.FirstPrefix = cp.Last
	case "r", "R":
		if err := os.Remove(cfg.Output); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "cannot remove %s: %v\n", cfg.Output, err)
			return ExitGeneralError, false
		}
		if err := m.Clear(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return ExitGeneralError, false
		}
	case "q", "Q":
		return ExitSuccess, false
	default:
		first, err := config.ParsePrefix(answer, config.MaxPrefix-1)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return ExitInvalidArgs, false
		}
		cfg.FirstPrefix = first
	}
	return ExitSuccess, true
}

// checkOverwrite warns when the dataset already exists without a
// checkpoint; appending to it would duplicate records.
func checkOverwrite(cfg *config.Config, yes bool) (int, bool) {
	info, err := os.Stat(cfg.Output)
	if err != nil || info.Size() == 0 {
		return ExitSuccess, true
	}
	fmt.Fprintf(os.Stderr, "%s already exists and there is no checkpoint to resume from.\n", cfg.Output)
	if !yes && !promptYesNo("Overwrite it? [y/n] ") {
		return ExitSuccess, false
	}
	if err := os.Remove(cfg.Output); err != nil {
		fmt.Fprintf(os.Stderr, "cannot remove %s: %v\n", cfg.Output, err)
		return ExitGeneralError, false
	}
	return ExitSuccess, true
}

func promptYesNo(prompt string) bool {
	fmt.Fprint(os.Stderr, prompt)
	answer := readLine()
	return answer == "y" || answer == "Y"
}

func readLine() string {
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
