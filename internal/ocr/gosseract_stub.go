//go:build !ocr

package ocr

import (
	"context"
	"image"

	"github.com/joseph-ayodele/docfields/internal/common"
)

// Gosseract is unavailable in builds without the "ocr" tag.
type Gosseract struct{}

func NewGosseract(Config) (*Gosseract, error) {
	return nil, common.WrapError(common.ErrNotCompiled, "gosseract engine requires -tags ocr")
}

func (*Gosseract) Recognize(context.Context, image.Image) (string, error) {
	return "", common.ErrNotCompiled
}

func (*Gosseract) Close() error { return nil }
