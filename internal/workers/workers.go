package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that forces a worker count.
const EnvOverride = "PROBE_WORKERS"

// Count returns a worker count of multiplier per available CPU, capped by
// limit (0 means no cap) and never below 1.
func Count(multiplier float64, limit int) int {
	if override, ok := envCount(); ok {
		return capAt(override, limit)
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	return capAt(workers, limit)
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// Resolve returns requested when it is positive, otherwise fallback.
// A fallback below 1 is raised to 1.
func Resolve(requested, fallback int) int {
	if requested > 0 {
		return requested
	}
	if fallback < 1 {
		return 1
	}
	return fallback
}

func envCount() (int, bool) {
	raw := os.Getenv(EnvOverride)
	if raw == "" {
		return 0, false
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
