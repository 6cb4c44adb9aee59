package timeutil

import "time"

// NowMillis returns the current wall clock as epoch milliseconds, the unit
// used for all frame and window timestamps.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts epoch milliseconds to a time.Time in the local zone.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// FormatMillis renders epoch milliseconds as a human readable timestamp,
// millisecond precision. Used when building summarization context lines.
func FormatMillis(ms int64) string {
	return MillisToTime(ms).Format("2006-01-02 15:04:05.000")
}
