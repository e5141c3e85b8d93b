package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime"

	"golang.org/x/image/draw"
)

const (
	mimeTypeJPEG = "image/jpeg"
	mimeTypePNG  = "image/png"
)

var imageMagic = map[string][]string{
	mimeTypeJPEG: {"\xFF\xD8"},
	mimeTypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
}

// sniffImageType validates the declared content type against the file's
// magic bytes and returns the canonical MIME type. Media type parameters
// ("image/jpeg; charset=binary") are ignored.
func sniffImageType(data []byte, declared string) (string, error) {
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			declared = parsed
		}
	}

	for mimeType, magics := range imageMagic {
		for _, magic := range magics {
			if len(data) >= len(magic) && string(data[:len(magic)]) == magic {
				if declared != "" && declared != mimeType {
					return "", ErrUnsupportedImageType
				}
				return mimeType, nil
			}
		}
	}
	return "", ErrUnsupportedImageType
}

// resizeImage downscales to the given width, preserving aspect ratio. The
// original is returned unchanged when it is already narrower.
func resizeImage(data []byte, contentType string, width int) ([]byte, error) {
	original, err := decodeImage(bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if width >= original.Bounds().Dx() {
		return data, nil
	}

	ratio := float64(width) / float64(original.Bounds().Dx())
	height := int(float64(original.Bounds().Dy()) * ratio)

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(bitmap, bitmap.Bounds(), original, original.Bounds(), draw.Over, nil)

	return encodeImage(bitmap, contentType)
}

func decodeImage(r io.Reader, contentType string) (image.Image, error) {
	switch contentType {
	case mimeTypeJPEG:
		return jpeg.Decode(r)
	case mimeTypePNG:
		return png.Decode(r)
	default:
		return nil, ErrUnsupportedImageType
	}
}

func encodeImage(img image.Image, contentType string) ([]byte, error) {
	var buf bytes.Buffer
	switch contentType {
	case mimeTypeJPEG:
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, fmt.Errorf("encode image: %w", err)
		}
	case mimeTypePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode image: %w", err)
		}
	default:
		return nil, ErrUnsupportedImageType
	}
	return buf.Bytes(), nil
}
