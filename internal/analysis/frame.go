package analysis

import "time"

// Emotion is a coarse three-way emotion classification.
type Emotion string

// Emotion labels produced by the classifier.
const (
	EmotionCalm    Emotion = "calm"
	EmotionNeutral Emotion = "neutral"
	EmotionExcited Emotion = "excited"
)

// Frame is one analysis result for one audio chunk. Pitch is 0 when no
// sufficiently strong periodicity was found (unvoiced or window too short).
type Frame struct {
	Timestamp    time.Time `json:"timestamp"`
	Volume       float64   `json:"volume"`
	IsSilence    bool      `json:"is_silence"`
	Pitch        float64   `json:"pitch"`
	SpeakingRate float64   `json:"speaking_rate"`
	Confidence   float64   `json:"confidence"`
	Emotion      Emotion   `json:"emotion"`
}
