package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "default configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name: "invalid http port",
			mutate: func(c *Config) {
				c.HTTP.Port = 70000
			},
			expectError: true,
			errorMsg:    "port must be between 1 and 65535",
		},
		{
			name: "empty bind address",
			mutate: func(c *Config) {
				c.HTTP.Address = ""
			},
			expectError: true,
			errorMsg:    "address cannot be empty",
		},
		{
			name: "stereo audio rejected",
			mutate: func(c *Config) {
				c.Audio.Channels = 2
			},
			expectError: true,
			errorMsg:    "channels must be 1",
		},
		{
			name: "sample rate out of range",
			mutate: func(c *Config) {
				c.Audio.SampleRate = 96000
			},
			expectError: true,
			errorMsg:    "sample_rate must be between 8000 and 48000",
		},
		{
			name: "pitch band inverted",
			mutate: func(c *Config) {
				c.Analysis.PitchMinHz = 500
				c.Analysis.PitchMaxHz = 50
			},
			expectError: true,
			errorMsg:    "pitch_max_hz",
		},
		{
			name: "voicing threshold too high",
			mutate: func(c *Config) {
				c.Analysis.VoicingThreshold = 1.5
			},
			expectError: true,
			errorMsg:    "voicing_threshold must be between 0 and 1",
		},
		{
			name: "emotion volume thresholds inverted",
			mutate: func(c *Config) {
				c.Analysis.ExcitedVolume = 100
				c.Analysis.CalmVolume = 2000
			},
			expectError: true,
			errorMsg:    "excited_volume",
		},
		{
			name: "zero idle timeout",
			mutate: func(c *Config) {
				c.Session.IdleTimeout = 0
			},
			expectError: true,
			errorMsg:    "idle_timeout must be at least 1 second",
		},
		{
			name: "recording enabled without directory",
			mutate: func(c *Config) {
				c.Recording.Enabled = true
				c.Recording.Directory = ""
			},
			expectError: true,
			errorMsg:    "directory cannot be empty",
		},
		{
			name: "invalid log level",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			expectError: true,
			errorMsg:    "level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
			}
		})
	}
}

func TestConfigLoad(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		errorMsg    string
		check       func(*testing.T, *Config)
	}{
		{
			name: "valid config file",
			configYAML: `
http:
  address: "127.0.0.1"
  port: 9000
audio:
  sample_rate: 8000
  buffer_window_ms: 250
session:
  idle_timeout: 120
logging:
  level: "debug"
  format: "json"
`,
			check: func(t *testing.T, c *Config) {
				if c.HTTP.Port != 9000 {
					t.Errorf("Expected port 9000, got %d", c.HTTP.Port)
				}
				if c.Audio.SampleRate != 8000 {
					t.Errorf("Expected sample rate 8000, got %d", c.Audio.SampleRate)
				}
				// Unset fields keep their defaults.
				if c.Analysis.SilenceThreshold != 500 {
					t.Errorf("Expected default silence threshold 500, got %f", c.Analysis.SilenceThreshold)
				}
				if got := c.Session.GetIdleTimeoutDuration(); got != 120*time.Second {
					t.Errorf("Expected idle timeout 120s, got %v", got)
				}
			},
		},
		{
			name: "invalid YAML syntax",
			configYAML: `
http:
  port: not_a_number
`,
			expectError: true,
			errorMsg:    "failed to parse",
		},
		{
			name: "validation failure",
			configYAML: `
audio:
  channels: 2
`,
			expectError: true,
			errorMsg:    "channels must be 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(tempDir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.configYAML), 0644); err != nil {
				t.Fatalf("Failed to create test config file: %v", err)
			}

			cfg, err := Load(configPath)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("Expected read error, got: %v", err)
	}
}

func TestBufferWindowSamples(t *testing.T) {
	a := AudioConfig{SampleRate: 16000, BufferWindowMS: 500}
	if got := a.BufferWindowSamples(); got != 8000 {
		t.Errorf("Expected 8000 samples, got %d", got)
	}

	a = AudioConfig{SampleRate: 8000, BufferWindowMS: 250}
	if got := a.BufferWindowSamples(); got != 2000 {
		t.Errorf("Expected 2000 samples, got %d", got)
	}
}
