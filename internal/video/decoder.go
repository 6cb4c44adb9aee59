package video

import (
	"context"
	"encoding/base64"

	"senseact/internal/dao"
	"senseact/internal/vision"
)

// Frame is one decoded frame. Implementations own the underlying pixel
// buffer; Close releases it.
type Frame interface {
	// Gray reduces the frame to a single-channel grid for similarity scoring.
	Gray() vision.Grid
	// EncodeJPEG encodes the frame as JPEG, optionally downscaled by the
	// given factor (1 keeps the original resolution).
	EncodeJPEG(scale float64) ([]byte, error)
	Close()
}

// Decoder yields frames of one video segment in decode order. Read returns
// io.EOF once the segment is exhausted.
type Decoder interface {
	FPS() float64
	FrameCount() int
	Read() (Frame, error)
	Close() error
}

// OpenFunc resolves a video reference to a decoder. Implementations report
// open failures instead of panicking; the caller skips the segment.
type OpenFunc func(ctx context.Context, ref *dao.VideoReference) (Decoder, error)

const jpegDataURIPrefix = "data:image/jpeg;base64,"

// JPEGDataURI wraps encoded JPEG bytes in the data-URI form stored alongside
// frame records and shipped to observers.
func JPEGDataURI(data []byte) string {
	return jpegDataURIPrefix + base64.StdEncoding.EncodeToString(data)
}
