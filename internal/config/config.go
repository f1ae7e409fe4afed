package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Session   SessionConfig   `yaml:"session"`
	Recording RecordingConfig `yaml:"recording"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig contains HTTP/WebSocket server configuration
type HTTPConfig struct {
	Address         string `yaml:"address"`
	Port            int    `yaml:"port"`
	MaxChunkBytes   int64  `yaml:"max_chunk_bytes"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // seconds
}

// AudioConfig contains the fixed incoming audio format.
// Sample rate and channel count are agreed out-of-band with the audio
// source; mismatched input produces garbage metrics, not a detected error.
type AudioConfig struct {
	SampleRate     int `yaml:"sample_rate"`
	Channels       int `yaml:"channels"`
	BitDepth       int `yaml:"bit_depth"`
	BufferWindowMS int `yaml:"buffer_window_ms"`
}

// AnalysisConfig contains feature extraction tuning parameters.
// The defaults are illustrative starting points, not calibrated constants.
type AnalysisConfig struct {
	SilenceThreshold   float64 `yaml:"silence_threshold"`
	MinPitchWindow     int     `yaml:"min_pitch_window"` // samples
	PitchMinHz         float64 `yaml:"pitch_min_hz"`
	PitchMaxHz         float64 `yaml:"pitch_max_hz"`
	VoicingThreshold   float64 `yaml:"voicing_threshold"`
	PeakTolerance      float64 `yaml:"peak_tolerance"`
	HistoryLength      int     `yaml:"history_length"` // frames
	MinRateFrames      int     `yaml:"min_rate_frames"`
	PitchVarianceScale float64 `yaml:"pitch_variance_scale"` // Hz^2
	ExcitedVolume      float64 `yaml:"excited_volume"`
	CalmVolume         float64 `yaml:"calm_volume"`
	ExcitedPitchDev    float64 `yaml:"excited_pitch_dev"` // Hz
	CalmPitchDev       float64 `yaml:"calm_pitch_dev"`    // Hz
}

// SessionConfig contains session lifecycle configuration
type SessionConfig struct {
	IdleTimeout   int `yaml:"idle_timeout"`   // seconds
	SweepInterval int `yaml:"sweep_interval"` // seconds
}

// RecordingConfig contains optional per-session WAV capture configuration
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns a configuration populated with the documented defaults.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         "0.0.0.0",
			Port:            8000,
			MaxChunkBytes:   1 << 20,
			ShutdownTimeout: 10,
		},
		Audio: AudioConfig{
			SampleRate:     16000,
			Channels:       1,
			BitDepth:       16,
			BufferWindowMS: 500,
		},
		Analysis: AnalysisConfig{
			SilenceThreshold:   500,
			MinPitchWindow:     1024,
			PitchMinHz:         50,
			PitchMaxHz:         500,
			VoicingThreshold:   0.30,
			PeakTolerance:      0.15,
			HistoryLength:      30,
			MinRateFrames:      10,
			PitchVarianceScale: 1000,
			ExcitedVolume:      2000,
			CalmVolume:         500,
			ExcitedPitchDev:    40,
			CalmPitchDev:       20,
		},
		Session: SessionConfig{
			IdleTimeout:   60,
			SweepInterval: 30,
		},
		Recording: RecordingConfig{
			Enabled:   false,
			Directory: "recordings",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	if err := c.Recording.Validate(); err != nil {
		return fmt.Errorf("recording config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if h.MaxChunkBytes < 1024 {
		return fmt.Errorf("max_chunk_bytes must be at least 1024, got %d", h.MaxChunkBytes)
	}

	if h.ShutdownTimeout < 1 {
		return fmt.Errorf("shutdown_timeout must be at least 1 second, got %d", h.ShutdownTimeout)
	}

	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 8000 || a.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000 Hz, got %d", a.SampleRate)
	}

	if a.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono), got %d", a.Channels)
	}

	if a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 16, got %d", a.BitDepth)
	}

	if a.BufferWindowMS < 100 {
		return fmt.Errorf("buffer_window_ms must be at least 100, got %d", a.BufferWindowMS)
	}

	return nil
}

// Validate validates analysis configuration
func (a *AnalysisConfig) Validate() error {
	if a.SilenceThreshold < 0 {
		return fmt.Errorf("silence_threshold cannot be negative, got %f", a.SilenceThreshold)
	}

	if a.MinPitchWindow < 256 {
		return fmt.Errorf("min_pitch_window must be at least 256 samples, got %d", a.MinPitchWindow)
	}

	if a.PitchMinHz <= 0 {
		return fmt.Errorf("pitch_min_hz must be positive, got %f", a.PitchMinHz)
	}

	if a.PitchMaxHz <= a.PitchMinHz {
		return fmt.Errorf("pitch_max_hz (%f) must be greater than pitch_min_hz (%f)",
			a.PitchMaxHz, a.PitchMinHz)
	}

	if a.VoicingThreshold <= 0 || a.VoicingThreshold >= 1 {
		return fmt.Errorf("voicing_threshold must be between 0 and 1 (exclusive), got %f", a.VoicingThreshold)
	}

	if a.PeakTolerance < 0 || a.PeakTolerance >= 1 {
		return fmt.Errorf("peak_tolerance must be between 0 and 1 (exclusive), got %f", a.PeakTolerance)
	}

	if a.HistoryLength < 2 {
		return fmt.Errorf("history_length must be at least 2 frames, got %d", a.HistoryLength)
	}

	if a.MinRateFrames < 2 {
		return fmt.Errorf("min_rate_frames must be at least 2, got %d", a.MinRateFrames)
	}

	if a.PitchVarianceScale <= 0 {
		return fmt.Errorf("pitch_variance_scale must be positive, got %f", a.PitchVarianceScale)
	}

	if a.ExcitedVolume <= a.CalmVolume {
		return fmt.Errorf("excited_volume (%f) must be greater than calm_volume (%f)",
			a.ExcitedVolume, a.CalmVolume)
	}

	if a.ExcitedPitchDev <= a.CalmPitchDev {
		return fmt.Errorf("excited_pitch_dev (%f) must be greater than calm_pitch_dev (%f)",
			a.ExcitedPitchDev, a.CalmPitchDev)
	}

	return nil
}

// Validate validates session configuration
func (s *SessionConfig) Validate() error {
	if s.IdleTimeout < 1 {
		return fmt.Errorf("idle_timeout must be at least 1 second, got %d", s.IdleTimeout)
	}

	if s.SweepInterval < 1 {
		return fmt.Errorf("sweep_interval must be at least 1 second, got %d", s.SweepInterval)
	}

	return nil
}

// Validate validates recording configuration
func (r *RecordingConfig) Validate() error {
	if r.Enabled && r.Directory == "" {
		return fmt.Errorf("directory cannot be empty when recording is enabled")
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// BufferWindowSamples returns the rolling sample buffer capacity in samples
func (a *AudioConfig) BufferWindowSamples() int {
	return a.SampleRate * a.BufferWindowMS / 1000
}

// GetIdleTimeoutDuration returns the session idle timeout as a time.Duration
func (s *SessionConfig) GetIdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Second
}

// GetSweepIntervalDuration returns the idle sweep interval as a time.Duration
func (s *SessionConfig) GetSweepIntervalDuration() time.Duration {
	return time.Duration(s.SweepInterval) * time.Second
}

// GetShutdownTimeoutDuration returns the HTTP shutdown timeout as a time.Duration
func (h *HTTPConfig) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(h.ShutdownTimeout) * time.Second
}
