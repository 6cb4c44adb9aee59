package window

// Window is the open time span of an ongoing event for one (device,
// category) pair, epoch milliseconds. A window with MaxTime <= MinTime is
// degenerate: either it only ever received its initial touch, or it was just
// reset after summarization. Degenerate windows are never summarized.
type Window struct {
	MinTime int64 `json:"min_time"`
	MaxTime int64 `json:"max_time"`
}

// Degenerate reports whether the window has no summarizable span yet.
func (w Window) Degenerate() bool {
	return w.MaxTime <= w.MinTime
}

// Length is the window span in milliseconds.
func (w Window) Length() int64 {
	return w.MaxTime - w.MinTime
}

// Store tracks event windows per device and category. It is the only state
// shared between the ingestion pipeline (which extends windows) and the
// summary scheduler (which resets them); implementations must make every
// read-modify-write cycle over one device's window set atomic, serializing
// per device rather than globally.
type Store interface {
	// Touch records a frame timestamp: it creates the window with
	// min=max=ts on first sight of the category, otherwise extends MaxTime.
	// MaxTime never moves backward, so late out-of-order frames cannot
	// shrink an open window.
	Touch(deviceId string, category string, ts int64) error

	// Snapshot returns a copy of the device's window set.
	Snapshot(deviceId string) (map[string]Window, error)

	// Devices lists every device that currently has windows.
	Devices() ([]string, error)

	// Reset collapses the (device, category) window after summarization:
	// MinTime becomes upTo and MaxTime becomes max(current, upTo), so the
	// next window of the category starts where the summarized one ended and
	// a frame ingested mid-summarization is not lost.
	Reset(deviceId string, category string, upTo int64) error

	Close() error
}
