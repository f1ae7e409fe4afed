// Package analysis implements the speech feature extractors and the
// per-frame analysis pipeline. Extractors are deterministic signal
// processing heuristics (RMS volume, autocorrelation pitch, rule-based
// emotion); each stays behind a per-frame contract so a richer model can
// replace it without touching session or transport code.
package analysis
