package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxDimension is the longest edge an uploaded image is resized to.
	MaxDimension = 800
	// JPEGQuality is the re-encode quality for stored images.
	JPEGQuality = 80
)

// CompressedImage is the result of decoding, resizing and re-encoding an upload.
type CompressedImage struct {
	Data        []byte
	Image       image.Image
	Width       int
	Height      int
	ContentType string
}

// Compress decodes raw image bytes, scales the image so its longest edge is at
// most MaxDimension pixels preserving aspect ratio, and re-encodes it as JPEG.
// Images already within bounds are still re-encoded so every stored blob is a
// JPEG at a known quality.
func Compress(data []byte) (*CompressedImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has empty bounds %dx%d", width, height)
	}

	if width > MaxDimension || height > MaxDimension {
		scale := float64(MaxDimension) / float64(width)
		if height > width {
			scale = float64(MaxDimension) / float64(height)
		}
		dstW := int(float64(width) * scale)
		dstH := int(float64(height) * scale)
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
		img = dst
		width, height = dstW, dstH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return &CompressedImage{
		Data:        buf.Bytes(),
		Image:       img,
		Width:       width,
		Height:      height,
		ContentType: "image/jpeg",
	}, nil
}

// Decode decodes raw image bytes without resizing.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
