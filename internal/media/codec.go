package media

import (
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Codec decodes a source image, resizes it to width x height and writes a
// JPEG to dst.
type Codec interface {
	Name() string
	Thumbnail(src io.Reader, dst io.Writer, width, height int) error
}

// NewCodec returns the codec for a THUMBNAIL_BACKEND value. The vips backend
// starts libvips; callers own the matching ShutdownVips.
func NewCodec(backend string) (Codec, error) {
	switch backend {
	case "", "imaging":
		return ImagingCodec{}, nil
	case "vips":
		if err := InitVips(); err != nil {
			return nil, err
		}
		return VipsCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown thumbnail backend %q", backend)
	}
}

// ImagingCodec is the pure Go codec.
type ImagingCodec struct{}

// Name implements Codec.
func (ImagingCodec) Name() string { return "imaging" }

// Thumbnail implements Codec.
func (ImagingCodec) Thumbnail(src io.Reader, dst io.Writer, width, height int) error {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	width, height = oriented(width, height, b.Dx(), b.Dy())
	if b.Dx() != width || b.Dy() != height {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	if err := imaging.Encode(dst, img, imaging.JPEG, imaging.JPEGQuality(ThumbnailQuality)); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}

// oriented swaps the target when EXIF rotation turned the decoded image
// sideways relative to the probed header.
func oriented(width, height, decodedW, decodedH int) (int, int) {
	if (width > height) != (decodedW > decodedH) && width != height && decodedW != decodedH {
		return height, width
	}
	return width, height
}
