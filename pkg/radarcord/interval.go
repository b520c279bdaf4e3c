package radarcord

import (
	"fmt"
	"strings"
	"time"
)

// IntervalPreset is a named autopost interval
type IntervalPreset int

const (
	// Default posts every 120 seconds
	Default IntervalPreset = iota
	// Safe posts every 180 seconds
	Safe
	// SuperSafe posts every 240 seconds
	SuperSafe
	// ExtraSafe posts every 300 seconds
	ExtraSafe
	// SuperOmegaSafe posts every 600 seconds, the most safe you could be
	SuperOmegaSafe
)

var presetSeconds = map[IntervalPreset]int{
	Default:        120,
	Safe:           180,
	SuperSafe:      240,
	ExtraSafe:      300,
	SuperOmegaSafe: 600,
}

var presetNames = map[IntervalPreset]string{
	Default:        "default",
	Safe:           "safe",
	SuperSafe:      "super_safe",
	ExtraSafe:      "extra_safe",
	SuperOmegaSafe: "super_omega_safe",
}

// IntervalPresets lists every preset in ascending order
func IntervalPresets() []IntervalPreset {
	return []IntervalPreset{Default, Safe, SuperSafe, ExtraSafe, SuperOmegaSafe}
}

// GetTimeout returns the number of seconds a preset stands for.
// Unknown presets return 0.
func GetTimeout(preset IntervalPreset) int {
	return presetSeconds[preset]
}

// Seconds is GetTimeout as a method
func (p IntervalPreset) Seconds() int {
	return GetTimeout(p)
}

// Duration converts the preset to a time.Duration
func (p IntervalPreset) Duration() time.Duration {
	return time.Duration(p.Seconds()) * time.Second
}

func (p IntervalPreset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("IntervalPreset(%d)", int(p))
}

// ParseIntervalPreset resolves a preset by name. Matching ignores case,
// dashes and underscores, so "SuperOmegaSafe" and "super-omega-safe" both work.
func ParseIntervalPreset(name string) (IntervalPreset, error) {
	key := normalizePresetName(name)
	for _, p := range IntervalPresets() {
		if normalizePresetName(presetNames[p]) == key {
			return p, nil
		}
	}
	return Default, fmt.Errorf("unknown interval preset %q", name)
}

func normalizePresetName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", "")
	return strings.ReplaceAll(name, "-", "")
}
