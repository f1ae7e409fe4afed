package analysis

// SpeakingRate estimates a words-per-minute-like figure from the cadence
// of voiced/unvoiced transitions in the history trail. Two transitions
// bound roughly one word-sized voiced segment. Returns 0 when the trail
// is shorter than minFrames or spans no audio time.
func SpeakingRate(h *History, minFrames int) float64 {
	if h.Len() < minFrames {
		return 0
	}

	seconds := h.TotalDuration().Seconds()
	if seconds <= 0 {
		return 0
	}

	words := float64(h.Transitions()) / 2
	return words / seconds * 60
}
