package vision

import (
	"math"
	"math/rand"
	"testing"
)

func uniformGrid(w, h int, v uint8) Grid {
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = v
	}
	return NewGrid(pix, w, h)
}

func noiseGrid(w, h int, seed int64) Grid {
	r := rand.New(rand.NewSource(seed))
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = uint8(r.Intn(256))
	}
	return NewGrid(pix, w, h)
}

func TestSimilarityIdentical(t *testing.T) {
	g := noiseGrid(64, 48, 1)
	cp := NewGrid(append([]uint8(nil), g.Pix...), g.Width, g.Height)

	got := Similarity(g, cp)
	if math.Abs(got-1) > 1e-6 {
		t.Fatalf("Similarity(f, f) = %v, want 1", got)
	}
}

func TestSimilarityInverted(t *testing.T) {
	g := noiseGrid(32, 32, 2)
	inv := NewGrid(make([]uint8, len(g.Pix)), g.Width, g.Height)
	for i, v := range g.Pix {
		inv.Pix[i] = 255 - v
	}

	got := Similarity(g, inv)
	if got >= 0.5 {
		t.Fatalf("Similarity of inverted frame = %v, want well below 1", got)
	}
}

func TestSimilaritySizeMismatchCropsSharedRegion(t *testing.T) {
	big := noiseGrid(40, 30, 3)
	small := big.crop(20, 15)

	// The shared top-left region is identical, so the score must be 1
	// regardless of the size mismatch.
	got := Similarity(big, small)
	if math.Abs(got-1) > 1e-6 {
		t.Fatalf("Similarity with cropped copy = %v, want 1", got)
	}

	// Order must not matter either.
	if rev := Similarity(small, big); math.Abs(rev-got) > 1e-9 {
		t.Fatalf("Similarity not symmetric under crop: %v vs %v", got, rev)
	}
}

func TestSimilarityUniformFrames(t *testing.T) {
	a := uniformGrid(16, 16, 128)
	b := uniformGrid(16, 16, 128)
	if got := Similarity(a, b); math.Abs(got-1) > 1e-6 {
		t.Fatalf("uniform identical frames scored %v, want 1", got)
	}

	dark := uniformGrid(16, 16, 10)
	bright := uniformGrid(16, 16, 240)
	if got := Similarity(dark, bright); got > 0.5 {
		t.Fatalf("dark vs bright scored %v, want low", got)
	}
}

func TestSimilarityBounded(t *testing.T) {
	// The index must never exceed 1, in particular not for identical or
	// highly correlated planes.
	for seed := int64(1); seed <= 5; seed++ {
		g := noiseGrid(24, 24, seed)
		cp := NewGrid(append([]uint8(nil), g.Pix...), g.Width, g.Height)
		if got := Similarity(g, cp); got > 1+1e-9 {
			t.Fatalf("seed %d: Similarity(f, f) = %v, exceeds 1", seed, got)
		}

		other := noiseGrid(24, 24, seed+100)
		if got := Similarity(g, other); got > 1+1e-9 {
			t.Fatalf("seed %d: Similarity = %v, exceeds 1", seed, got)
		}
	}
}

func TestSimilarityEmptyGrid(t *testing.T) {
	if got := Similarity(Grid{}, uniformGrid(4, 4, 1)); got != 0 {
		t.Fatalf("empty grid scored %v, want 0", got)
	}
}
