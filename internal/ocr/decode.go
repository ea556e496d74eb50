package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/joseph-ayodele/docfields/internal/common"
)

// Decoder turns photographed-page bytes into an image. HEIC/HEIF input is
// converted to PNG by an external converter first.
type Decoder struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewDecoder(cfg Config, runner Runner, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &Decoder{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

func (d *Decoder) Decode(ctx context.Context, data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", common.ErrInvalidInput
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, format, nil
	}
	if !IsHEIC(data) {
		return nil, "", fmt.Errorf("%w: %v", common.ErrUnsupportedFormat, err)
	}
	png, err := d.convertHEIC(ctx, data)
	if err != nil {
		return nil, "", err
	}
	img, _, err = image.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, "", fmt.Errorf("decode converted heic: %w", err)
	}
	return img, "heic", nil
}

// IsHEIC sniffs the ISO-BMFF ftyp brand.
func IsHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "heim", "heis", "mif1", "msf1":
		return true
	}
	return false
}

// convertHEIC converts HEIC/HEIF bytes to PNG using the configured converter.
// converter: "heif-convert" | "magick" | "sips"
func (d *Decoder) convertHEIC(ctx context.Context, data []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "df-heic-*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	in := filepath.Join(tmpDir, "page.heic")
	out := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, err
	}

	var args []string
	switch d.cfg.HeicConverter {
	case "heif-convert", "magick":
		args = []string{in, out}
	case "sips":
		args = []string{"-s", "format", "png", in, "--out", out}
	default:
		return nil, fmt.Errorf("%w: HEIC requires heic_converter to be one of heif-convert | magick | sips", common.ErrUnsupportedFormat)
	}
	if _, errb, err := d.runner.Run(ctx, d.cfg.HeicConverter, args...); err != nil {
		return nil, fmt.Errorf("%s convert failed: %w: %s", d.cfg.HeicConverter, err, truncate(string(errb), 512))
	}

	b, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("HEIC conversion produced no output: %w", err)
	}
	d.logger.Debug("ocr.heic.converted", "converter", d.cfg.HeicConverter, "bytes", len(b))
	return b, nil
}
