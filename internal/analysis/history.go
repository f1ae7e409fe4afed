package analysis

import (
	"math"
	"time"
)

// Entry is one frame's contribution to a session's rolling history.
type Entry struct {
	Timestamp  time.Time
	Duration   time.Duration // audio duration of the chunk behind the frame
	Volume     float64
	Pitch      float64
	Confidence float64
	Voiced     bool
}

// History is a bounded trail of recent frame results. It grows by exactly
// one entry per Append and is truncated to its limit immediately after
// insertion, oldest entries first.
//
// History is not safe for concurrent use; the owning session serializes
// access to it.
type History struct {
	entries []Entry
	limit   int
}

// NewHistory creates a history bounded to limit entries.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{entries: make([]Entry, 0, limit), limit: limit}
}

// Append adds one entry and truncates to the limit.
func (h *History) Append(e Entry) {
	h.entries = append(h.entries, e)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Len returns the number of entries currently held.
func (h *History) Len() int {
	return len(h.entries)
}

// VoicedPitches returns the pitch values of voiced entries, oldest first.
func (h *History) VoicedPitches() []float64 {
	pitches := make([]float64, 0, len(h.entries))
	for _, e := range h.entries {
		if e.Pitch > 0 {
			pitches = append(pitches, e.Pitch)
		}
	}
	return pitches
}

// MeanVolume returns the average volume across the trail, 0 when empty.
func (h *History) MeanVolume() float64 {
	if len(h.entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range h.entries {
		sum += e.Volume
	}
	return sum / float64(len(h.entries))
}

// Transitions counts voiced/unvoiced boundaries between consecutive
// entries, a rough proxy for syllable and word boundaries.
func (h *History) Transitions() int {
	transitions := 0
	for i := 1; i < len(h.entries); i++ {
		if h.entries[i].Voiced != h.entries[i-1].Voiced {
			transitions++
		}
	}
	return transitions
}

// TotalDuration returns the summed audio duration of the trail.
func (h *History) TotalDuration() time.Duration {
	var total time.Duration
	for _, e := range h.entries {
		total += e.Duration
	}
	return total
}

// mean returns the arithmetic mean of xs, 0 when empty.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance returns the population variance of xs, 0 with fewer than two values.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// stddev returns the population standard deviation of xs.
func stddev(xs []float64) float64 {
	return math.Sqrt(variance(xs))
}
