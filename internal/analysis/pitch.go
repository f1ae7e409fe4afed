package analysis

// PitchDetector estimates the fundamental frequency of a sample window by
// normalized autocorrelation, restricted to a plausible human-voice range.
type PitchDetector struct {
	sampleRate       int
	minWindow        int // minimum samples for a reliable estimate
	minLag           int // sampleRate / maxHz
	maxLag           int // sampleRate / minHz
	voicingThreshold float64
	peakTolerance    float64
}

// NewPitchDetector builds a detector for the given sample rate and range.
func NewPitchDetector(sampleRate, minWindow int, minHz, maxHz, voicingThreshold, peakTolerance float64) *PitchDetector {
	return &PitchDetector{
		sampleRate:       sampleRate,
		minWindow:        minWindow,
		minLag:           int(float64(sampleRate) / maxHz),
		maxLag:           int(float64(sampleRate) / minHz),
		voicingThreshold: voicingThreshold,
		peakTolerance:    peakTolerance,
	}
}

// Detect returns the estimated fundamental frequency in Hz, or 0 when the
// window is too short or no sufficiently strong periodicity exists.
//
// Candidate lags must be local maxima of the normalized autocorrelation
// with a score at or above the voicing threshold. Among candidates within
// peakTolerance of the best score, the smallest lag (highest frequency)
// wins; this is a deliberate, adjustable policy to avoid octave-halving
// errors on strongly harmonic signals.
func (d *PitchDetector) Detect(window []float64) float64 {
	n := len(window)
	if n < d.minWindow {
		return 0
	}

	// Remove DC offset so a biased signal does not fake periodicity.
	m := mean(window)
	w := make([]float64, n)
	var energy float64
	for i, s := range window {
		w[i] = s - m
		energy += w[i] * w[i]
	}
	if energy < 1e-12 {
		return 0
	}

	maxLag := d.maxLag
	if maxLag >= n {
		maxLag = n - 1
	}
	minLag := d.minLag
	if minLag < 2 {
		minLag = 2
	}
	if minLag >= maxLag {
		return 0
	}

	// Normalized autocorrelation over [minLag-1, maxLag+1]; the extra lag
	// on each side lets every in-range lag be tested as a local maximum.
	lo := minLag - 1
	hi := maxLag + 1
	if hi >= n {
		hi = n - 1
	}
	scores := make([]float64, hi-lo+1)
	for lag := lo; lag <= hi; lag++ {
		var sum float64
		for i := 0; i < n-lag; i++ {
			sum += w[i] * w[i+lag]
		}
		scores[lag-lo] = sum / energy
	}

	isPeak := func(lag int) bool {
		s := scores[lag-lo]
		if lag-1 >= lo && scores[lag-1-lo] > s {
			return false
		}
		if lag+1 <= hi && scores[lag+1-lo] > s {
			return false
		}
		return true
	}

	best := 0.0
	for lag := minLag; lag <= maxLag && lag <= hi; lag++ {
		if s := scores[lag-lo]; s > best && isPeak(lag) {
			best = s
		}
	}
	if best < d.voicingThreshold {
		return 0
	}

	floor := best * (1 - d.peakTolerance)
	for lag := minLag; lag <= maxLag && lag <= hi; lag++ {
		s := scores[lag-lo]
		if s >= floor && s >= d.voicingThreshold && isPeak(lag) {
			return float64(d.sampleRate) / float64(lag)
		}
	}

	return 0
}
