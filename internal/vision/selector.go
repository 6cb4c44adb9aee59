package vision

// DefaultSimilarityThreshold gates keyframe selection. A sampled frame is
// promoted when its score against the last keyframe falls BELOW the
// threshold: low score means the scene changed. Raising the threshold
// extracts more keyframes, not fewer.
const DefaultSimilarityThreshold = 0.8

// KeyframeSelector decides, frame by frame, whether a sampled frame differs
// enough from the last accepted keyframe to be worth analyzing. It is
// stateful and belongs to exactly one video segment run; do not share one
// across concurrently processed segments.
type KeyframeSelector struct {
	threshold float64
	last      *Grid
	score     func(prev, curr Grid) float64
}

func NewKeyframeSelector(threshold float64) *KeyframeSelector {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &KeyframeSelector{
		threshold: threshold,
		score:     Similarity,
	}
}

// Consider scores the sampled grid against the last accepted keyframe and
// reports whether it should be promoted. The first frame of a run is always
// accepted with score 0 since there is nothing to compare against. On
// acceptance the grid becomes the new comparison baseline.
func (s *KeyframeSelector) Consider(g Grid) (accepted bool, score float64) {
	if s.last == nil {
		s.last = &g
		return true, 0
	}

	score = s.score(*s.last, g)
	if score >= s.threshold {
		// Similar enough to the last keyframe, skip it.
		return false, score
	}

	s.last = &g
	return true, score
}
