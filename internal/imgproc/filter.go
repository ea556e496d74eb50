package imgproc

import (
	"image"
	"math"
	"slices"
)

// MedianBlur replaces each pixel with the median of its ksize×ksize neighbourhood.
// Borders are replicated. ksize must be odd; values below 3 return a copy.
func MedianBlur(g *image.Gray, ksize int) *image.Gray {
	g = normalized(g)
	if ksize < 3 || ksize%2 == 0 {
		return Clone(g)
	}
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	dst := newGray(w, h)
	r := ksize / 2
	win := make([]uint8, 0, ksize*ksize)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			win = win[:0]
			for dy := -r; dy <= r; dy++ {
				yy := clampInt(y+dy, 0, h-1)
				row := g.Pix[yy*g.Stride:]
				for dx := -r; dx <= r; dx++ {
					win = append(win, row[clampInt(x+dx, 0, w-1)])
				}
			}
			slices.Sort(win)
			dst.Pix[y*dst.Stride+x] = win[len(win)/2]
		}
	}
	return dst
}

// GaussianKernel returns a normalized 1-D kernel. A non-positive sigma is
// derived from the size as 0.3*((ksize-1)*0.5-1)+0.8.
func GaussianKernel(ksize int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*((float64(ksize)-1)*0.5-1) + 0.8
	}
	k := make([]float64, ksize)
	c := float64(ksize-1) / 2
	var sum float64
	for i := range k {
		d := float64(i) - c
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// gaussianBlur applies a separable gaussian with replicated borders, returning float sums.
func gaussianBlur(g *image.Gray, ksize int, sigma float64) []float64 {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	k := GaussianKernel(ksize, sigma)
	r := ksize / 2
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < w; x++ {
			var s float64
			for i, kv := range k {
				s += kv * float64(row[clampInt(x+i-r, 0, w-1)])
			}
			tmp[y*w+x] = s
		}
	}
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s float64
			for i, kv := range k {
				s += kv * tmp[clampInt(y+i-r, 0, h-1)*w+x]
			}
			out[y*w+x] = s
		}
	}
	return out
}
