// Package imaging prepares user supplied images for the variation endpoint,
// which only accepts square PNGs under 4 MiB.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxBytes     = 4 * 1024 * 1024
	FallbackSide = 500
	// width*height above this is refused before any pixel is decoded
	MaxPixels = 89_478_485
)

var (
	ErrDecode   = errors.New("cannot decode image")
	ErrTooLarge = errors.New("image too large after resizing")
)

type Normalizer struct {
	// re-encoded images of MaxBytes or more are shrunk to FallbackSide
	MaxBytes     int
	FallbackSide int
	MaxPixels    int
}

func NewNormalizer() *Normalizer {
	return &Normalizer{MaxBytes: MaxBytes, FallbackSide: FallbackSide, MaxPixels: MaxPixels}
}

// Normalize returns a square PNG strictly smaller than MaxBytes together with
// a notice describing what was changed. The notice is empty when the image
// only had to be re-encoded.
func (n *Normalizer) Normalize(data []byte) ([]byte, string, error) {
	img, err := n.decode(data)
	if err != nil {
		return nil, "", err
	}

	var notice string
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width != height {
		side := min(width, height)
		notice = fmt.Sprintf("Input image is %dx%d when it needs to be 1:1. I resized it for you so that it is %dx%d. Will continue generating...", width, height, side, side)
		img = resize(img, side)
	}

	out, err := encode(img)
	if err != nil {
		return nil, "", err
	}

	if len(out) >= n.MaxBytes {
		notice = fmt.Sprintf("Input image is %.2f MBs when it needs to be less than %g MBs. I cropped it to %dx%d to reduce size. Will continue generating...",
			megabytes(len(out)), megabytes(n.MaxBytes), n.FallbackSide, n.FallbackSide)
		img = resize(img, n.FallbackSide)
		if out, err = encode(img); err != nil {
			return nil, "", err
		}
		if len(out) >= n.MaxBytes {
			return nil, "", fmt.Errorf("%w: %d bytes at %dx%d, limit %d", ErrTooLarge, len(out), n.FallbackSide, n.FallbackSide, n.MaxBytes)
		}
	}
	return out, notice, nil
}

func megabytes(n int) float64 {
	return float64(n) / (1024 * 1024)
}

func (n *Normalizer) decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}
	if mt := mimetype.Detect(data).String(); !strings.HasPrefix(mt, "image/") {
		return nil, fmt.Errorf("%w: content type %s", ErrDecode, mt)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err.Error())
	}
	maxPixels := n.MaxPixels
	if maxPixels <= 0 {
		maxPixels = MaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err.Error())
	}
	return img, nil
}

// nearest neighbour keeps the output deterministic
func resize(src image.Image, side int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
