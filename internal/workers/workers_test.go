package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier",
			multiplier: 0.01,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected in [%d, %d]", tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int // -1 means fall back to the computed value
	}{
		{name: "Valid override", envValue: "8", expected: 8},
		{name: "Override capped by limit", envValue: "20", limit: 10, expected: 10},
		{name: "Override below limit", envValue: "5", limit: 10, expected: 5},
		{name: "Non-numeric ignored", envValue: "invalid", expected: -1},
		{name: "Zero ignored", envValue: "0", expected: -1},
		{name: "Negative ignored", envValue: "-5", expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.envValue)

			got := Count(1.0, tt.limit)
			if tt.expected == -1 {
				if got < 1 {
					t.Errorf("Count with ignored override should return at least 1, got %d", got)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("Count(1.0, %d) with %s=%s = %d, want %d", tt.limit, EnvOverride, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestForIOAndForCPU(t *testing.T) {
	t.Setenv(EnvOverride, "")

	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, want 1", got)
	}
	if got := ForIO(3); got < 1 || got > 3 {
		t.Errorf("ForIO(3) = %d, want within [1, 3]", got)
	}
	if ForIO(0) < ForCPU(0) {
		t.Errorf("ForIO(0) = %d should not be below ForCPU(0) = %d", ForIO(0), ForCPU(0))
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		fallback  int
		want      int
	}{
		{name: "explicit wins", requested: 4, fallback: 8, want: 4},
		{name: "zero uses fallback", requested: 0, fallback: 8, want: 8},
		{name: "negative uses fallback", requested: -1, fallback: 3, want: 3},
		{name: "fallback floor", requested: 0, fallback: 0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.requested, tt.fallback); got != tt.want {
				t.Errorf("Resolve(%d, %d) = %d, want %d", tt.requested, tt.fallback, got, tt.want)
			}
		})
	}
}
