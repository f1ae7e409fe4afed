package analysis

import "math"

// volumeScale maps normalized [-1,1] samples back to int16-equivalent
// magnitudes, so typical speech volume lands in the hundreds-to-thousands
// range callers already expect.
const volumeScale = 32768.0

// MeasureVolume computes the RMS volume of the window and classifies it
// against the silence threshold. An empty or all-zero window reports
// volume 0 and silence true.
func MeasureVolume(window []float64, silenceThreshold float64) (volume float64, silent bool) {
	if len(window) == 0 {
		return 0, true
	}

	var energy float64
	for _, s := range window {
		energy += s * s
	}
	volume = math.Sqrt(energy/float64(len(window))) * volumeScale

	return volume, volume < silenceThreshold
}
