package vision

// Grid is a single-channel sample plane in row-major order. Decoded frames
// are reduced to grayscale grids before any similarity scoring.
type Grid struct {
	Pix    []uint8
	Width  int
	Height int
}

func NewGrid(pix []uint8, width, height int) Grid {
	return Grid{Pix: pix, Width: width, Height: height}
}

func (g Grid) Empty() bool {
	return g.Width <= 0 || g.Height <= 0 || len(g.Pix) < g.Width*g.Height
}

// crop returns the top-left w x h region of g.
func (g Grid) crop(w, h int) Grid {
	if w == g.Width && h == g.Height {
		return g
	}
	pix := make([]uint8, 0, w*h)
	for y := 0; y < h; y++ {
		row := y * g.Width
		pix = append(pix, g.Pix[row:row+w]...)
	}
	return Grid{Pix: pix, Width: w, Height: h}
}

// SSIM stabilizing constants for 8-bit samples.
const (
	ssimK1 = 0.005
	ssimK2 = 0.015
	ssimL  = 255.0
)

// Similarity computes a global structural similarity index between two
// grids, following Wang et al., "Image quality assessment: From error
// visibility to structural similarity" (IEEE TIP 2004). The statistics are
// taken over the whole plane rather than a sliding window, which is enough
// to tell "same scene" from "scene changed". 1 means identical; values can
// go slightly negative for anti-correlated content.
//
// Mismatched sizes are not an error: both grids are cropped to their shared
// top-left region first.
func Similarity(prev, curr Grid) float64 {
	if prev.Empty() || curr.Empty() {
		return 0
	}

	if prev.Width != curr.Width || prev.Height != curr.Height {
		w := min(prev.Width, curr.Width)
		h := min(prev.Height, curr.Height)
		prev = prev.crop(w, h)
		curr = curr.crop(w, h)
	}

	c1 := (ssimK1 * ssimL) * (ssimK1 * ssimL)
	c2 := (ssimK2 * ssimL) * (ssimK2 * ssimL)

	n := float64(prev.Width * prev.Height)

	var sum1, sum2 float64
	for i := range prev.Pix[:prev.Width*prev.Height] {
		sum1 += float64(prev.Pix[i])
		sum2 += float64(curr.Pix[i])
	}
	mu1 := sum1 / n
	mu2 := sum2 / n

	var var1, var2, cov float64
	for i := range prev.Pix[:prev.Width*prev.Height] {
		d1 := float64(prev.Pix[i]) - mu1
		d2 := float64(curr.Pix[i]) - mu2
		var1 += d1 * d1
		var2 += d2 * d2
		cov += d1 * d2
	}
	// Population statistics throughout; mixing normalizations would push
	// the score of identical planes above 1.
	var1 /= n
	var2 /= n
	cov /= n

	return ((2*mu1*mu2 + c1) * (2*cov + c2)) /
		((mu1*mu1 + mu2*mu2 + c1) * (var1 + var2 + c2))
}
