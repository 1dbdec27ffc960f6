package media

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

func newTestFS(t testing.TB) billy.Filesystem {
	t.Helper()
	return osfs.New(t.TempDir())
}

// encodeTestImage renders a gradient so resizing has something to work on.
func encodeTestImage(t testing.TB, width, height int, format string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: 128,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg", "jpg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("Unsupported test image format: %s", format)
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func writeTestImage(t testing.TB, fs billy.Filesystem, name string, width, height int, format string) {
	t.Helper()
	if err := util.WriteFile(fs, name, encodeTestImage(t, width, height, format), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}
