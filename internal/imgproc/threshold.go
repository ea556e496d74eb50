package imgproc

import (
	"image"
	"math"
)

// Threshold binarizes g: pixels above thresh become maxVal, others 0.
// With inverse the two outcomes are swapped.
func Threshold(g *image.Gray, thresh, maxVal uint8, inverse bool) *image.Gray {
	g = normalized(g)
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	dst := newGray(w, h)
	hi, lo := maxVal, uint8(0)
	if inverse {
		hi, lo = 0, maxVal
	}
	for i, v := range g.Pix[:w*h] {
		if v > thresh {
			dst.Pix[i] = hi
		} else {
			dst.Pix[i] = lo
		}
	}
	return dst
}

// Otsu returns the threshold maximizing between-class variance of g's histogram.
func Otsu(g *image.Gray) uint8 {
	g = normalized(g)
	var hist [256]int
	n := g.Bounds().Dx() * g.Bounds().Dy()
	for _, v := range g.Pix[:n] {
		hist[v]++
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}
	var (
		sumB, best float64
		wB         int
		t          uint8
	)
	for i := 0; i < 256; i++ {
		wB += hist[i]
		if wB == 0 {
			continue
		}
		wF := n - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * hist[i])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			t = uint8(i)
		}
	}
	return t
}

// ThresholdOtsu binarizes g with the Otsu threshold.
func ThresholdOtsu(g *image.Gray, inverse bool) *image.Gray {
	return Threshold(g, Otsu(g), White, inverse)
}

// AdaptiveGaussian binarizes g against a gaussian-weighted local mean over a
// blockSize×blockSize neighbourhood minus c. Borders are replicated.
// A pixel is foreground when it is darker than mean-c (inverse) or brighter (normal).
func AdaptiveGaussian(g *image.Gray, blockSize int, c float64, inverse bool) *image.Gray {
	g = normalized(g)
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	mean := gaussianBlur(g, blockSize, 0)
	delta := int(math.Floor(c))
	if !inverse {
		delta = int(math.Ceil(c))
	}
	dst := newGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := int(math.Round(mean[y*w+x]))
			above := int(g.Pix[y*g.Stride+x])-m > -delta
			if above != inverse {
				dst.Pix[y*w+x] = White
			}
		}
	}
	return dst
}
