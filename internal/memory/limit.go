package memory

import (
	"math"
	"os"
	"runtime"
	"runtime/debug"
	"strconv"

	"image-catalog/internal/logging"
)

// DefaultRatio is the share of the container limit given to the Go heap. The
// rest covers libvips buffers and goroutine stacks.
const DefaultRatio = 0.85

// Limit describes the outcome of ConfigureFromEnv.
type Limit struct {
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source         string
	ContainerBytes int64
	GoBytes        int64
	Ratio          float64
}

// Configured reports whether a soft limit is in effect.
func (l Limit) Configured() bool {
	return l.GoBytes > 0
}

// ConfigureFromEnv sets the Go memory limit from MEMORY_LIMIT and
// MEMORY_RATIO unless GOMEMLIMIT is already set. Call it before significant
// allocations.
func ConfigureFromEnv() Limit {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		limit := Limit{Source: "GOMEMLIMIT"}
		if current := debug.SetMemoryLimit(-1); current > 0 && current < math.MaxInt64 {
			limit.GoBytes = current
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return limit
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return Limit{Source: "none"}
	}

	container, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || container <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return Limit{Source: "none"}
	}

	ratio := parseRatio(os.Getenv("MEMORY_RATIO"))
	goBytes := int64(float64(container) * ratio)
	debug.SetMemoryLimit(goBytes)

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		FormatBytes(goBytes), ratio*100, FormatBytes(container))

	return Limit{
		Source:         "MEMORY_LIMIT",
		ContainerBytes: container,
		GoBytes:        goBytes,
		Ratio:          ratio,
	}
}

// parseRatio returns raw as a ratio in (0, 1], or DefaultRatio.
func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultRatio
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("Invalid MEMORY_RATIO %q, using default %.2f", raw, DefaultRatio)
		return DefaultRatio
	}
	return ratio
}

// HeapInUse returns the bytes in in-use heap spans.
func HeapInUse() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapInuse
}

// FormatBytes renders b with binary units.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
