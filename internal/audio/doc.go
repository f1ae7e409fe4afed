// Package audio handles PCM decoding, rolling sample buffering, and WAV
// capture. It converts raw 16-bit little-endian mono PCM into normalized
// float samples, maintains the bounded per-session sample window used by
// the analysis pipeline, and optionally records session audio to disk.
package audio
