// Package imgproc implements the raster operations used for OCR preprocessing
// and table segmentation on single-channel images.
//
// Every function returns a new *image.Gray whose bounds start at (0,0); inputs
// are never modified. Binary images use 0 for background and 255 for foreground.
package imgproc

import (
	"image"

	"golang.org/x/image/draw"
)

const (
	Black uint8 = 0
	White uint8 = 255
)

func newGray(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

// ToGray converts any image to an 8-bit grayscale image anchored at the origin.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := newGray(b.Dx(), b.Dy())
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Clone copies g into a fresh origin-anchored image.
func Clone(g *image.Gray) *image.Gray {
	return Crop(g, g.Bounds())
}

// Crop copies the part of g inside r. r is clipped to the image bounds.
func Crop(g *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(g.Bounds())
	dst := newGray(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		srcOff := g.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+r.Dx()], g.Pix[srcOff:srcOff+r.Dx()])
	}
	return dst
}

// Upscale enlarges g by an integer factor with bilinear interpolation.
func Upscale(g *image.Gray, factor int) *image.Gray {
	if factor <= 1 {
		return Clone(g)
	}
	b := g.Bounds()
	dst := newGray(b.Dx()*factor, b.Dy()*factor)
	draw.BiLinear.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// Add returns the saturating per-pixel sum of a and b over their common area.
func Add(a, b *image.Gray) *image.Gray {
	w := min(a.Bounds().Dx(), b.Bounds().Dx())
	h := min(a.Bounds().Dy(), b.Bounds().Dy())
	dst := newGray(w, h)
	for y := 0; y < h; y++ {
		ao := a.PixOffset(a.Bounds().Min.X, a.Bounds().Min.Y+y)
		bo := b.PixOffset(b.Bounds().Min.X, b.Bounds().Min.Y+y)
		for x := 0; x < w; x++ {
			s := int(a.Pix[ao+x]) + int(b.Pix[bo+x])
			if s > 255 {
				s = 255
			}
			dst.Pix[y*dst.Stride+x] = uint8(s)
		}
	}
	return dst
}

// CountNonZero returns the number of foreground pixels.
func CountNonZero(g *image.Gray) int {
	n := 0
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := g.PixOffset(b.Min.X, y)
		for _, v := range g.Pix[off : off+b.Dx()] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// normalized returns g itself when it is origin-anchored and tightly packed, a copy otherwise.
func normalized(g *image.Gray) *image.Gray {
	b := g.Bounds()
	if b.Min == (image.Point{}) && g.Stride == b.Dx() {
		return g
	}
	return Crop(g, b)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CropToGray converts the part of img inside r to grayscale. r is clipped to img's bounds.
func CropToGray(img image.Image, r image.Rectangle) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return Crop(g, r)
	}
	r = r.Intersect(img.Bounds())
	dst := newGray(r.Dx(), r.Dy())
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
