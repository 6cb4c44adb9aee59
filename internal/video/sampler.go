package video

// DefaultFrameInterval is the sampling stride: one in every N decoded
// frames is considered for keyframe selection.
const DefaultFrameInterval = 10

// Sampled is one candidate frame with its derived absolute timestamp.
type Sampled struct {
	Frame Frame
	Index int
	// Timestamp is the segment base timestamp plus the frame offset, epoch
	// milliseconds.
	Timestamp int64
}

// Sampler iterates a decoder with a fixed stride. Frames between sampled
// indices are read and discarded so the decode stays sequential; there is no
// seeking. The sequence is finite and non-restartable.
type Sampler struct {
	dec      Decoder
	interval int
	baseTs   int64
	fps      float64
	index    int
}

func NewSampler(dec Decoder, baseTs int64, interval int) *Sampler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	fps := dec.FPS()
	if fps <= 0 {
		fps = 30.0
	}
	return &Sampler{
		dec:      dec,
		interval: interval,
		baseTs:   baseTs,
		fps:      fps,
	}
}

// Next returns the next sampled frame, or io.EOF once the segment is
// exhausted. The caller owns the returned frame and must Close it.
func (s *Sampler) Next() (*Sampled, error) {
	for {
		frame, err := s.dec.Read()
		if err != nil {
			return nil, err
		}

		idx := s.index
		s.index++

		if idx%s.interval != 0 {
			frame.Close()
			continue
		}

		offsetMs := int64(float64(idx) / s.fps * 1000)
		return &Sampled{
			Frame:     frame,
			Index:     idx,
			Timestamp: s.baseTs + offsetMs,
		}, nil
	}
}
