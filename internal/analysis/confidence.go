package analysis

// ConfidenceScore combines pitch stability with the silence flag into a
// clarity score in [0, 1]. Silence forces the score to 0; otherwise lower
// variance across the voiced pitch trail yields a higher score
// (1 / (1 + variance/scale)), so the score is monotonic in both inputs.
// With fewer than two voiced pitches a neutral 0.5 prior is reported.
func ConfidenceScore(silent bool, voicedPitches []float64, varianceScale float64) float64 {
	if silent {
		return 0
	}
	if len(voicedPitches) < 2 {
		return 0.5
	}
	return 1 / (1 + variance(voicedPitches)/varianceScale)
}
