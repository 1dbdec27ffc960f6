package media

import (
	"fmt"
	"image"
	"io"

	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-git/go-billy/v5"
	_ "golang.org/x/image/webp" // WebP content behind an allow-listed extension
)

// Resolution is the pixel size of an image. The zero value means the size is
// unknown.
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Pixels returns Width*Height.
func (r Resolution) Pixels() int {
	return r.Width * r.Height
}

// IsZero reports whether the resolution is unknown.
func (r Resolution) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Probe reads the image header of name and returns its dimensions without
// decoding pixel data. Any failure (unreadable, truncated, not an image)
// yields the zero Resolution.
func Probe(fs billy.Filesystem, name string) Resolution {
	f, err := fs.Open(name)
	if err != nil {
		probeFailed(name, err)
		return Resolution{}
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", name, err)
		}
	}()

	res, err := ReadResolution(f)
	if err != nil {
		probeFailed(name, err)
		return Resolution{}
	}
	return res
}

// ReadResolution reads an image header from r. Headers declaring an empty image
// are an error.
func ReadResolution(r io.Reader) (Resolution, error) {
	config, _, err := image.DecodeConfig(r)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Width: config.Width, Height: config.Height}
	if res.IsZero() {
		return Resolution{}, fmt.Errorf("empty image %s", res)
	}
	return res, nil
}

func probeFailed(name string, err error) {
	metrics.ProbeFailures.Inc()
	logging.Debug("Could not probe image dimensions for %s: %v", name, err)
}
