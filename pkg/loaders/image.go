package loaders

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned for image formats that cannot be written
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Image formats accepted by WriteImage
const (
	FormatPNG = "png"
	FormatPPM = "ppm"
)

// Formats returns the supported output formats
func Formats() []string {
	return []string{FormatPNG, FormatPPM}
}

// FormatFromPath picks the output format from the file extension
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return normalizeFormat(ext)
}

func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatPPM, "pnm":
		return FormatPPM, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

// WriteImage encodes img to path. An empty format is inferred from the
// path's extension.
func WriteImage(path, format string, img image.Image) (err error) {
	if format == "" {
		format, err = FormatFromPath(path)
	} else {
		format, err = normalizeFormat(format)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create output directory")
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create image file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close image file")
		}
	}()

	switch format {
	case FormatPPM:
		return WritePPM(file, img)
	default:
		return WritePNG(file, img)
	}
}

// WritePNG encodes img as PNG
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(err, "failed to encode PNG")
	}
	return nil
}

// WritePPM encodes img as a plain-text (P3) PPM with 8-bit channels, one
// pixel per line, rows from top to bottom
func WritePPM(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	out := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(out, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return errors.Wrap(err, "failed to write PPM header")
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if _, err := fmt.Fprintf(out, "%d %d %d\n", c.R, c.G, c.B); err != nil {
				return errors.Wrap(err, "failed to write PPM pixel")
			}
		}
	}
	if err := out.Flush(); err != nil {
		return errors.Wrap(err, "failed to write PPM")
	}
	return nil
}
