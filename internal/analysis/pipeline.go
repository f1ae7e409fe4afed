package analysis

import (
	"fmt"
	"time"
)

// Config holds every tunable analysis constant. Values are supplied by the
// service configuration; zero values are rejected by NewPipeline.
type Config struct {
	SampleRate         int
	SilenceThreshold   float64
	MinPitchWindow     int
	PitchMinHz         float64
	PitchMaxHz         float64
	VoicingThreshold   float64
	PeakTolerance      float64
	HistoryLength      int
	MinRateFrames      int
	PitchVarianceScale float64
	Emotion            EmotionThresholds
}

// Pipeline composes the five extractors into one Frame per audio chunk.
// It is stateless across calls; all rolling state lives in the caller's
// History, which gains exactly one entry per Analyze call.
type Pipeline struct {
	cfg   Config
	pitch *PitchDetector
}

// NewPipeline creates a pipeline from validated analysis configuration.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.MinPitchWindow <= 0 {
		return nil, fmt.Errorf("min pitch window must be positive, got %d", cfg.MinPitchWindow)
	}
	if cfg.PitchMinHz <= 0 || cfg.PitchMaxHz <= cfg.PitchMinHz {
		return nil, fmt.Errorf("invalid pitch range: %f..%f Hz", cfg.PitchMinHz, cfg.PitchMaxHz)
	}
	if cfg.HistoryLength < 1 {
		return nil, fmt.Errorf("history length must be at least 1, got %d", cfg.HistoryLength)
	}
	if cfg.PitchVarianceScale <= 0 {
		return nil, fmt.Errorf("pitch variance scale must be positive, got %f", cfg.PitchVarianceScale)
	}

	return &Pipeline{
		cfg: cfg,
		pitch: NewPitchDetector(cfg.SampleRate, cfg.MinPitchWindow,
			cfg.PitchMinHz, cfg.PitchMaxHz, cfg.VoicingThreshold, cfg.PeakTolerance),
	}, nil
}

// HistoryLength returns the configured bound K for session history trails.
func (p *Pipeline) HistoryLength() int {
	return p.cfg.HistoryLength
}

// Analyze runs the extractors in fixed order (volume/silence, pitch,
// confidence, speaking rate, emotion) over the session's current sample
// window and history, appends the new values to the history, and returns
// the assembled frame. chunkSamples is the size of the chunk that
// triggered this frame, used to time-base the speaking rate.
func (p *Pipeline) Analyze(window []float64, chunkSamples int, hist *History, now time.Time) Frame {
	volume, silent := MeasureVolume(window, p.cfg.SilenceThreshold)
	pitch := p.pitch.Detect(window)

	voiced := hist.VoicedPitches()
	if pitch > 0 {
		voiced = append(voiced, pitch)
	}
	confidence := ConfidenceScore(silent, voiced, p.cfg.PitchVarianceScale)

	// Speaking rate and emotion read the trail including this frame.
	hist.Append(Entry{
		Timestamp:  now,
		Duration:   time.Duration(chunkSamples) * time.Second / time.Duration(p.cfg.SampleRate),
		Volume:     volume,
		Pitch:      pitch,
		Confidence: confidence,
		Voiced:     !silent,
	})

	rate := SpeakingRate(hist, p.cfg.MinRateFrames)
	emotion := ClassifyEmotion(hist.MeanVolume(), stddev(hist.VoicedPitches()), p.cfg.Emotion)

	return Frame{
		Timestamp:    now,
		Volume:       volume,
		IsSilence:    silent,
		Pitch:        pitch,
		SpeakingRate: rate,
		Confidence:   confidence,
		Emotion:      emotion,
	}
}
