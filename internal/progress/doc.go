// Package progress provides console output for a download run.
//
// All output funnels through one Reporter so lines from concurrent workers
// never interleave. The Reporter also owns the progress bar (one tick per
// completed prefix group) and the running record counters.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalGroups: totalGroups,
//	    Workers:     workers,
//	    Verbosity:   1,
//	})
//	reporter.Start()
//	defer reporter.Finish()
//
//	// from workers
//	reporter.GroupCompleted(len(records))
//	reporter.Errorf("HTTP status code = %d", code)
package progress
