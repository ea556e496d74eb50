//go:build !fitz

package ocr

import (
	"context"
	"image"
	"log/slog"

	"github.com/joseph-ayodele/docfields/internal/common"
)

// Fitz is unavailable in builds without the "fitz" tag.
type Fitz struct{}

func NewFitz(Config, *slog.Logger) (*Fitz, error) {
	return nil, common.WrapError(common.ErrNotCompiled, "fitz rasterizer requires -tags fitz")
}

func (*Fitz) Rasterize(context.Context, []byte) ([]image.Image, error) {
	return nil, common.ErrNotCompiled
}
