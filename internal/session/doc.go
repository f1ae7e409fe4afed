// Package session provides per-participant analysis sessions and the
// registry that owns them. It manages concurrent session lifecycles,
// enforces one active session per (room, participant) pair, and reaps
// idle sessions on a background sweep.
package session
