package imgproc

import "image"

// Canny detects edges with 3×3 Sobel gradients (L1 magnitude), non-maximum
// suppression and hysteresis between low and high. Edge pixels are White.
func Canny(g *image.Gray, low, high float64) *image.Gray {
	g = normalized(g)
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	dst := newGray(w, h)
	if w < 3 || h < 3 {
		return dst
	}
	if low > high {
		low, high = high, low
	}

	px := func(x, y int) int {
		return int(g.Pix[clampInt(y, 0, h-1)*g.Stride+clampInt(x, 0, w-1)])
	}
	gx := make([]int, w*h)
	gy := make([]int, w*h)
	mag := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := px(x+1, y-1) + 2*px(x+1, y) + px(x+1, y+1) - px(x-1, y-1) - 2*px(x-1, y) - px(x-1, y+1)
			dy := px(x-1, y+1) + 2*px(x, y+1) + px(x+1, y+1) - px(x-1, y-1) - 2*px(x, y-1) - px(x+1, y-1)
			i := y*w + x
			gx[i], gy[i] = dx, dy
			mag[i] = abs(dx) + abs(dy)
		}
	}

	m := func(x, y int) int {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// tan(22.5°) and tan(67.5°) in 15-bit fixed point
	const (
		tan22 = 13573
		shift = 15
	)
	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	var stack []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := mag[i]
			if float64(v) <= low {
				continue
			}
			ax, ay := abs(gx[i]), abs(gy[i])
			tg22 := ax * tan22
			tg67 := tg22 + (ax << (shift + 1))
			ay <<= shift
			var keep bool
			switch {
			case ay < tg22:
				keep = v > m(x-1, y) && v >= m(x+1, y)
			case ay > tg67:
				keep = v > m(x, y-1) && v >= m(x, y+1)
			case (gx[i] < 0) != (gy[i] < 0):
				keep = v > m(x+1, y-1) && v > m(x-1, y+1)
			default:
				keep = v > m(x-1, y-1) && v > m(x+1, y+1)
			}
			if !keep {
				continue
			}
			if float64(v) > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dst.Pix[i] = White
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == weak {
					state[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
