package imgproc

import "image"

// Erode applies a kw×kh rectangular minimum filter the given number of times.
// Pixels outside the image do not take part.
func Erode(g *image.Gray, kw, kh, iterations int) *image.Gray {
	return morph(g, kw, kh, iterations, false)
}

// Dilate applies a kw×kh rectangular maximum filter the given number of times.
func Dilate(g *image.Gray, kw, kh, iterations int) *image.Gray {
	return morph(g, kw, kh, iterations, true)
}

// Open is erosion followed by dilation with the same kernel.
func Open(g *image.Gray, kw, kh int) *image.Gray {
	return Dilate(Erode(g, kw, kh, 1), kw, kh, 1)
}

// Close is dilation followed by erosion with the same kernel.
func Close(g *image.Gray, kw, kh int) *image.Gray {
	return Erode(Dilate(g, kw, kh, 1), kw, kh, 1)
}

func morph(g *image.Gray, kw, kh, iterations int, isMax bool) *image.Gray {
	out := Clone(g)
	if kw < 1 {
		kw = 1
	}
	if kh < 1 {
		kh = 1
	}
	if iterations < 1 {
		iterations = 1
	}
	if kw == 1 && kh == 1 {
		return out
	}
	for i := 0; i < iterations; i++ {
		out = rankFilter(out, kw, kh, isMax)
	}
	return out
}

// rankFilter runs the min/max as two 1-D passes; the anchor is the kernel centre (kw/2, kh/2).
func rankFilter(g *image.Gray, kw, kh int, isMax bool) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	pick := func(a, b uint8) uint8 {
		if isMax == (b > a) {
			return b
		}
		return a
	}
	ax, ay := kw/2, kh/2

	tmp := newGray(w, h)
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		out := tmp.Pix[y*tmp.Stride : y*tmp.Stride+w]
		for x := 0; x < w; x++ {
			lo, hi := max(x-ax, 0), min(x+kw-1-ax, w-1)
			v := row[lo]
			for xi := lo + 1; xi <= hi; xi++ {
				v = pick(v, row[xi])
			}
			out[x] = v
		}
	}

	dst := newGray(w, h)
	for y := 0; y < h; y++ {
		lo, hi := max(y-ay, 0), min(y+kh-1-ay, h-1)
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		copy(out, tmp.Pix[lo*tmp.Stride:lo*tmp.Stride+w])
		for yi := lo + 1; yi <= hi; yi++ {
			src := tmp.Pix[yi*tmp.Stride : yi*tmp.Stride+w]
			for x := 0; x < w; x++ {
				out[x] = pick(out[x], src[x])
			}
		}
	}
	return dst
}
