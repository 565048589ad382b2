package format

import (
	"math"
	"time"

	"iecsize/pkg/iec"
)

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.50MiB").
// Negative counts are rendered with a leading minus, which is useful for deltas.
func HumanizeBytes(b int64) string {
	// Use a fixed buffer to avoid allocation
	var buf [20]byte
	s := buf[:0]
	if b < 0 {
		s = append(s, '-')
		// -MinInt64 overflows; uint64 negation keeps the magnitude.
		return string(iec.New(-uint64(b)).Append(s))
	}
	return string(iec.New(uint64(b)).Append(s))
}

// HumanizeRate renders bytes transferred over d as a per-second rate (e.g., "2.50MiB/s").
func HumanizeRate(b int64, d time.Duration) string {
	if d <= 0 || b <= 0 {
		return iec.New(0).String() + "/s"
	}
	perSec := float64(b) / d.Seconds()
	if perSec >= 1<<64 {
		return iec.New(math.MaxUint64).String() + "/s"
	}
	return iec.New(uint64(perSec)).String() + "/s"
}
