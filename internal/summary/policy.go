package summary

import "senseact/internal/window"

// ShouldClose decides whether an open event window is ready to be
// summarized. A window closes once its category went quiet for maxGapMs, or
// once its span exceeds maxDurMs even while frames keep arriving. A
// degenerate window holds a single frame and never closes; it either grows
// or keeps waiting.
func ShouldClose(w window.Window, nowMs, maxGapMs, maxDurMs int64) bool {
	if w.Degenerate() {
		return false
	}
	if nowMs-w.MaxTime >= maxGapMs {
		return true
	}
	return w.Length() >= maxDurMs
}
