package analysis

// EmotionThresholds holds the rule-table boundaries for the emotion
// classifier. Volumes are in RMS magnitude units, deviations in Hz.
type EmotionThresholds struct {
	ExcitedVolume   float64
	CalmVolume      float64
	ExcitedPitchDev float64
	CalmPitchDev    float64
}

// ClassifyEmotion maps mean volume and voiced-pitch deviation over the
// recent trail to a coarse label: loud and variable reads as excited,
// quiet and steady as calm, anything else as neutral. A fixed rule table,
// not a learned model; callers may swap it behind the same contract.
func ClassifyEmotion(meanVolume, pitchDev float64, t EmotionThresholds) Emotion {
	switch {
	case meanVolume > t.ExcitedVolume && pitchDev > t.ExcitedPitchDev:
		return EmotionExcited
	case meanVolume < t.CalmVolume && pitchDev < t.CalmPitchDev:
		return EmotionCalm
	default:
		return EmotionNeutral
	}
}
