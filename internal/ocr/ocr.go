// Package ocr wraps the external recognition and rasterization capabilities:
// OCR engines, the OCR preprocessor, per-cell recognition and PDF page rendering.
package ocr

import (
	"context"
	"image"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	Language    string // tesseract language, default "rus"
	TessdataDir string
	PSM         int // page segmentation mode; 0 leaves the engine default

	DPI      int // rasterization DPI, default 300
	MaxPages int // 0 = no limit

	HeicConverter string // heif-convert | magick | sips
}

func (c Config) withDefaults() Config {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Language == "" {
		c.Language = "rus"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	return c
}

// Engine recognizes text in an image. The language is fixed at construction.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Rasterizer renders every page of a PDF to an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]image.Image, error)
}
