/*
Package workers sizes the bounded pools used while building a catalog.

Worker counts are derived from GOMAXPROCS rather than runtime.NumCPU so that
container CPU limits are respected (Go 1.19+ sets GOMAXPROCS from the cgroup
quota).

	// header probing is I/O bound: two workers per CPU, at most 8
	n := workers.ForIO(8)

An explicit count from configuration takes precedence:

	n := workers.Resolve(cfg.ProbeWorkers, workers.ForIO(8))

The PROBE_WORKERS environment variable overrides the computed count for
every helper. Values that do not parse as a positive integer are ignored.
*/
package workers
