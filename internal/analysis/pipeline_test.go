package analysis

import (
	"math"
	"testing"
	"time"
)

func testPipelineConfig() Config {
	return Config{
		SampleRate:         16000,
		SilenceThreshold:   500,
		MinPitchWindow:     1024,
		PitchMinHz:         50,
		PitchMaxHz:         500,
		VoicingThreshold:   0.30,
		PeakTolerance:      0.15,
		HistoryLength:      30,
		MinRateFrames:      10,
		PitchVarianceScale: 1000,
		Emotion: EmotionThresholds{
			ExcitedVolume:   2000,
			CalmVolume:      500,
			ExcitedPitchDev: 40,
			CalmPitchDev:    20,
		},
	}
}

func TestNewPipelineValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero pitch window", func(c *Config) { c.MinPitchWindow = 0 }},
		{"inverted pitch range", func(c *Config) { c.PitchMinHz = 500; c.PitchMaxHz = 50 }},
		{"zero history", func(c *Config) { c.HistoryLength = 0 }},
		{"zero variance scale", func(c *Config) { c.PitchVarianceScale = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testPipelineConfig()
			tt.mutate(&cfg)
			if _, err := NewPipeline(cfg); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}

	if _, err := NewPipeline(testPipelineConfig()); err != nil {
		t.Errorf("Expected valid config to pass, got: %v", err)
	}
}

func TestAnalyzeSilentFrame(t *testing.T) {
	p, err := NewPipeline(testPipelineConfig())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	hist := NewHistory(p.HistoryLength())

	window := make([]float64, 8000)
	frame := p.Analyze(window, 1600, hist, time.Now())

	if !frame.IsSilence {
		t.Error("Expected silence for all-zero window")
	}
	if frame.Volume != 0 {
		t.Errorf("Expected volume 0, got %f", frame.Volume)
	}
	if frame.Pitch != 0 {
		t.Errorf("Expected pitch 0, got %f", frame.Pitch)
	}
	if frame.Confidence != 0 {
		t.Errorf("Expected confidence 0 for silence, got %f", frame.Confidence)
	}
	if frame.Emotion != EmotionCalm {
		t.Errorf("Expected calm for silence, got %s", frame.Emotion)
	}
	if hist.Len() != 1 {
		t.Errorf("Expected one history entry per analyze, got %d", hist.Len())
	}
}

func TestAnalyzeVoicedFrame(t *testing.T) {
	p, err := NewPipeline(testPipelineConfig())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	hist := NewHistory(p.HistoryLength())

	window := sineWindow(200, 16000, 2048, 0.3)
	frame := p.Analyze(window, 1600, hist, time.Now())

	if frame.IsSilence {
		t.Error("Expected non-silence for loud tone")
	}
	if math.Abs(frame.Pitch-200) > 10 {
		t.Errorf("Expected pitch near 200 Hz, got %f", frame.Pitch)
	}
	// A single voiced frame has no pitch trail yet, so the neutral prior.
	if frame.Confidence != 0.5 {
		t.Errorf("Expected neutral confidence 0.5, got %f", frame.Confidence)
	}
	// Loud but perfectly steady pitch is not excited.
	if frame.Emotion != EmotionNeutral {
		t.Errorf("Expected neutral emotion, got %s", frame.Emotion)
	}
}

func TestAnalyzeConfidenceStabilizes(t *testing.T) {
	p, err := NewPipeline(testPipelineConfig())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	hist := NewHistory(p.HistoryLength())

	window := sineWindow(200, 16000, 2048, 0.3)

	var frame Frame
	for i := 0; i < 10; i++ {
		frame = p.Analyze(window, 1600, hist, time.Now())
	}

	// A perfectly steady tone has zero pitch variance.
	if frame.Confidence < 0.99 {
		t.Errorf("Expected confidence near 1 for steady pitch, got %f", frame.Confidence)
	}
}

func TestAnalyzeSpeakingRate(t *testing.T) {
	p, err := NewPipeline(testPipelineConfig())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	hist := NewHistory(p.HistoryLength())

	tone := sineWindow(200, 16000, 2048, 0.3)
	silence := make([]float64, 2048)

	// Alternate tone and silence, 100ms chunks. 20 frames span 2 seconds
	// with 19 transitions: 9.5 words over 2s is 285 per minute.
	var frame Frame
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			frame = p.Analyze(tone, 1600, hist, time.Now())
		} else {
			frame = p.Analyze(silence, 1600, hist, time.Now())
		}
	}

	want := 19.0 / 2.0 / 2.0 * 60
	if math.Abs(frame.SpeakingRate-want) > 1 {
		t.Errorf("Expected speaking rate near %f, got %f", want, frame.SpeakingRate)
	}
}

func TestAnalyzeRateBelowMinFrames(t *testing.T) {
	p, err := NewPipeline(testPipelineConfig())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	hist := NewHistory(p.HistoryLength())

	tone := sineWindow(200, 16000, 2048, 0.3)

	var frame Frame
	for i := 0; i < 5; i++ {
		frame = p.Analyze(tone, 1600, hist, time.Now())
	}

	if frame.SpeakingRate != 0 {
		t.Errorf("Expected rate 0 below minimum trail length, got %f", frame.SpeakingRate)
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name    string
		silent  bool
		pitches []float64
		want    float64
	}{
		{"silence", true, []float64{200, 201, 202}, 0},
		{"no pitch trail", false, nil, 0.5},
		{"single pitch", false, []float64{200}, 0.5},
		{"steady pitch", false, []float64{200, 200, 200}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfidenceScore(tt.silent, tt.pitches, 1000)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestConfidenceScoreMonotonic(t *testing.T) {
	steady := ConfidenceScore(false, []float64{200, 205, 195}, 1000)
	wild := ConfidenceScore(false, []float64{100, 400, 150, 350}, 1000)

	if steady <= wild {
		t.Errorf("Expected steadier pitch to score higher: %f vs %f", steady, wild)
	}
	if steady <= 0 || steady > 1 || wild <= 0 || wild > 1 {
		t.Errorf("Scores out of (0, 1]: %f, %f", steady, wild)
	}
}

func TestClassifyEmotion(t *testing.T) {
	thresholds := EmotionThresholds{
		ExcitedVolume:   2000,
		CalmVolume:      500,
		ExcitedPitchDev: 40,
		CalmPitchDev:    20,
	}

	tests := []struct {
		name       string
		meanVolume float64
		pitchDev   float64
		want       Emotion
	}{
		{"loud and variable", 3000, 50, EmotionExcited},
		{"quiet and steady", 200, 10, EmotionCalm},
		{"loud but steady", 3000, 10, EmotionNeutral},
		{"quiet but variable", 200, 50, EmotionNeutral},
		{"middle of the road", 1000, 30, EmotionNeutral},
		{"exactly at thresholds", 2000, 40, EmotionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyEmotion(tt.meanVolume, tt.pitchDev, thresholds); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
