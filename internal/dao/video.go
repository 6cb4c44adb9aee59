package dao

// VideoReference is the body of a stream message announcing a new video
// segment. It carries everything the worker needs to locate the segment in
// object storage; the coordinates are opaque to the processing pipeline.
type VideoReference struct {
	DeviceId string `json:"deviceId" binding:"required"`
	// Timestamp marks the segment start, epoch milliseconds. Per-frame
	// timestamps are derived from it.
	Timestamp  int64  `json:"timestamp" binding:"required"`
	Bucket     string `json:"bucket,omitempty"`
	ObjectName string `json:"objectName" binding:"required"`
}
