package ocr

import (
	"image"

	"github.com/joseph-ayodele/docfields/internal/imgproc"
)

const (
	upscaleFactor   = 2
	medianKernel    = 3
	binaryThreshold = 100
)

// Preprocess prepares a region for recognition: 2× bilinear upscale,
// grayscale, 3×3 median denoise, fixed binarization at 100, then a 1×1
// opening and closing. Dark text stays black on a white background.
func Preprocess(img image.Image) *image.Gray {
	gray := imgproc.ToGray(img)
	gray = imgproc.Upscale(gray, upscaleFactor)
	gray = imgproc.MedianBlur(gray, medianKernel)
	bin := imgproc.Threshold(gray, binaryThreshold, imgproc.White, false)
	bin = imgproc.Open(bin, 1, 1)
	return imgproc.Close(bin, 1, 1)
}
