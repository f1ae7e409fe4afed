// Package config provides configuration loading and validation for the
// audio analysis service. It handles YAML-based configuration with struct
// validation and defaults for every tunable analysis constant.
package config
