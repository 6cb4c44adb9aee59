package vision

import "testing"

func TestSelectorAcceptsFirstFrameOnly(t *testing.T) {
	s := NewKeyframeSelector(0.8)
	g := noiseGrid(32, 24, 7)

	accepted, score := s.Consider(g)
	if !accepted || score != 0 {
		t.Fatalf("first frame: accepted=%v score=%v, want true/0", accepted, score)
	}

	// Repeats of the same frame score ~1 and must be rejected.
	for i := 0; i < 2; i++ {
		accepted, score = s.Consider(g)
		if accepted {
			t.Fatalf("repeat %d accepted with score %v", i, score)
		}
		if score < 0.99 {
			t.Fatalf("repeat %d scored %v, want ~1", i, score)
		}
	}
}

func TestSelectorAcceptsOnSceneChange(t *testing.T) {
	s := NewKeyframeSelector(0.8)

	a := noiseGrid(32, 24, 7)
	b := NewGrid(make([]uint8, len(a.Pix)), a.Width, a.Height)
	for i, v := range a.Pix {
		b.Pix[i] = 255 - v
	}

	if ok, _ := s.Consider(a); !ok {
		t.Fatal("first frame rejected")
	}
	ok, score := s.Consider(b)
	if !ok {
		t.Fatalf("dissimilar frame rejected, score %v", score)
	}
	// b is now the baseline, so b again must be rejected.
	if ok, _ := s.Consider(b); ok {
		t.Fatal("baseline was not replaced on acceptance")
	}
}

func TestSelectorThresholdBoundary(t *testing.T) {
	// Scores exactly at the threshold mean "similar enough": not a keyframe.
	scores := []float64{0.9, 0.5, 0.95, 0.8}
	i := 0
	s := NewKeyframeSelector(0.8)
	s.score = func(prev, curr Grid) float64 {
		v := scores[i]
		i++
		return v
	}

	g := uniformGrid(4, 4, 0)
	wantAccepted := []bool{true, false, true, false, false}
	wantScore := []float64{0, 0.9, 0.5, 0.95, 0.8}
	for n := range wantAccepted {
		ok, score := s.Consider(g)
		if ok != wantAccepted[n] || score != wantScore[n] {
			t.Fatalf("frame %d: got (%v, %v), want (%v, %v)",
				n, ok, score, wantAccepted[n], wantScore[n])
		}
	}
}
