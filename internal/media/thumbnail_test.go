package media

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// countingCodec wraps a codec and counts encodes.
type countingCodec struct {
	Codec
	calls atomic.Int32
}

func (c *countingCodec) Thumbnail(src io.Reader, dst io.Writer, width, height int) error {
	c.calls.Add(1)
	return c.Codec.Thumbnail(src, dst, width, height)
}

type failingCodec struct{}

func (failingCodec) Name() string { return "failing" }
func (failingCodec) Thumbnail(io.Reader, io.Writer, int, int) error {
	return errors.New("encoder exploded")
}

func TestThumbnailPath(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"a.jpg", "thumb_a.jpg"},
		{"sub/b.png", "sub/thumb_b.png"},
		{"x/y/z/Photo One.JPEG", "x/y/z/thumb_Photo One.JPEG"},
	}

	for _, tt := range tests {
		if got := ThumbnailPath(tt.source); got != tt.want {
			t.Errorf("ThumbnailPath(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestIsThumbnail(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"thumb_a.jpg", true},
		{"sub/thumb_b.png", true},
		{"a.jpg", false},
		{"my_thumb_a.jpg", false},
		{"thumb_dir/a.jpg", false},
	}

	for _, tt := range tests {
		if got := IsThumbnail(tt.name); got != tt.want {
			t.Errorf("IsThumbnail(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"landscape", 400, 200, 300, 150},
		{"portrait", 200, 400, 150, 300},
		{"square", 1000, 1000, 300, 300},
		{"rounding", 301, 300, 300, 299},
		{"rounding half up", 600, 401, 300, 201},
		{"extreme panorama", 3000, 1, 300, 1},
		{"already small", 100, 50, 100, 50},
		{"exactly limit", 300, 120, 300, 120},
		{"zero", 0, 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetSize(tt.width, tt.height)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("TargetSize(%d, %d) = (%d, %d), want (%d, %d)",
					tt.width, tt.height, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func decodeConfig(t *testing.T, fs billy.Filesystem, name string) (image.Config, string) {
	t.Helper()
	f, err := fs.Open(name)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", name, err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig(%s) error = %v", name, err)
	}
	return cfg, format
}

func assertNoTempFiles(t *testing.T, fs billy.Filesystem, dir string) {
	t.Helper()
	infos, err := fs.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%q) error = %v", dir, err)
	}
	for _, info := range infos {
		if strings.HasPrefix(info.Name(), ".") {
			t.Errorf("temporary file left behind: %s", info.Name())
		}
	}
}

func TestEnsureThumbnail_Generates(t *testing.T) {
	tests := []struct {
		name          string
		source        string
		width, height int
		format        string
		wantW, wantH  int
	}{
		{"large png", "sub/b.png", 400, 200, "png", 300, 150},
		{"large jpeg portrait", "p.jpg", 240, 480, "jpeg", 150, 300},
		{"gif becomes jpeg", "g.gif", 600, 600, "gif", 300, 300},
		{"small image not upscaled", "tiny.png", 100, 50, "png", 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTestFS(t)
			writeTestImage(t, fs, tt.source, tt.width, tt.height, tt.format)
			store := NewThumbnailStore(fs, ImagingCodec{})

			thumb, err := store.EnsureThumbnail(context.Background(), tt.source)
			if err != nil {
				t.Fatalf("EnsureThumbnail() error = %v", err)
			}
			if thumb != ThumbnailPath(tt.source) {
				t.Errorf("EnsureThumbnail() = %q, want %q", thumb, ThumbnailPath(tt.source))
			}

			cfg, format := decodeConfig(t, fs, thumb)
			if format != "jpeg" {
				t.Errorf("thumbnail format = %s, want jpeg", format)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("thumbnail size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
			if max(cfg.Width, cfg.Height) > ThumbnailSize {
				t.Errorf("long edge %d exceeds %d", max(cfg.Width, cfg.Height), ThumbnailSize)
			}
		})
	}
}

func TestEnsureThumbnail_CacheHitSkipsEncode(t *testing.T) {
	fs := newTestFS(t)
	writeTestImage(t, fs, "a.jpg", 800, 600, "jpeg")
	codec := &countingCodec{Codec: ImagingCodec{}}
	store := NewThumbnailStore(fs, codec)

	for i := 0; i < 3; i++ {
		if _, err := store.EnsureThumbnail(context.Background(), "a.jpg"); err != nil {
			t.Fatalf("EnsureThumbnail() call %d error = %v", i, err)
		}
	}

	if got := codec.calls.Load(); got != 1 {
		t.Errorf("encodes = %d, want 1", got)
	}
}

func TestEnsureThumbnail_ExistingFileIsTrusted(t *testing.T) {
	fs := newTestFS(t)
	writeTestImage(t, fs, "a.jpg", 800, 600, "jpeg")
	if err := util.WriteFile(fs, "thumb_a.jpg", []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	codec := &countingCodec{Codec: ImagingCodec{}}

	thumb, err := NewThumbnailStore(fs, codec).EnsureThumbnail(context.Background(), "a.jpg")
	if err != nil {
		t.Fatalf("EnsureThumbnail() error = %v", err)
	}
	data, _ := util.ReadFile(fs, thumb)
	if string(data) != "stale" {
		t.Error("existing thumbnail was overwritten")
	}
	if codec.calls.Load() != 0 {
		t.Error("codec invoked on cache hit")
	}
}

func TestEnsureThumbnail_Failures(t *testing.T) {
	t.Run("undecodable source", func(t *testing.T) {
		fs := newTestFS(t)
		if err := util.WriteFile(fs, "bad.jpg", []byte("garbage"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := NewThumbnailStore(fs, ImagingCodec{}).EnsureThumbnail(context.Background(), "bad.jpg")
		if err == nil {
			t.Fatal("EnsureThumbnail() error = nil, want failure")
		}
		if _, statErr := fs.Stat("thumb_bad.jpg"); statErr == nil {
			t.Error("thumbnail created for undecodable source")
		}
	})

	t.Run("encoder failure leaves no partial file", func(t *testing.T) {
		fs := newTestFS(t)
		writeTestImage(t, fs, "ok.png", 500, 500, "png")

		_, err := NewThumbnailStore(fs, failingCodec{}).EnsureThumbnail(context.Background(), "ok.png")
		if err == nil || !strings.Contains(err.Error(), "encoder exploded") {
			t.Fatalf("EnsureThumbnail() error = %v, want encoder failure", err)
		}
		if _, statErr := fs.Stat("thumb_ok.png"); statErr == nil {
			t.Error("thumbnail present after encoder failure")
		}
		assertNoTempFiles(t, fs, "")
	})

	t.Run("missing source", func(t *testing.T) {
		fs := newTestFS(t)
		if _, err := NewThumbnailStore(fs, ImagingCodec{}).EnsureThumbnail(context.Background(), "nope.jpg"); err == nil {
			t.Error("EnsureThumbnail() error = nil for missing source")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		fs := newTestFS(t)
		writeTestImage(t, fs, "a.png", 400, 400, "png")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewThumbnailStore(fs, ImagingCodec{}).EnsureThumbnail(ctx, "a.png")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("EnsureThumbnail() error = %v, want context.Canceled", err)
		}
	})
}

func TestEnsureThumbnail_ConcurrentWriters(t *testing.T) {
	fs := newTestFS(t)
	writeTestImage(t, fs, "race.jpg", 900, 300, "jpeg")
	store := NewThumbnailStore(fs, ImagingCodec{})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.EnsureThumbnail(context.Background(), "race.jpg")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("EnsureThumbnail() error = %v", err)
		}
	}

	cfg, _ := decodeConfig(t, fs, "thumb_race.jpg")
	if cfg.Width != 300 || cfg.Height != 100 {
		t.Errorf("thumbnail size = %dx%d, want 300x100", cfg.Width, cfg.Height)
	}
	assertNoTempFiles(t, fs, "")
}

func TestNewCodec(t *testing.T) {
	for _, backend := range []string{"", "imaging"} {
		codec, err := NewCodec(backend)
		if err != nil {
			t.Fatalf("NewCodec(%q) error = %v", backend, err)
		}
		if codec.Name() != "imaging" {
			t.Errorf("NewCodec(%q).Name() = %q, want imaging", backend, codec.Name())
		}
	}

	codec, _ := NewCodec("imaging")
	if got := NewThumbnailStore(newTestFS(t), codec).Codec(); got != codec {
		t.Errorf("Codec() = %v, want %v", got, codec)
	}

	if _, err := NewCodec("magick"); err == nil {
		t.Error("NewCodec(magick) error = nil, want unknown backend")
	}
}

func TestOriented(t *testing.T) {
	tests := []struct {
		name             string
		w, h, decW, decH int
		wantW, wantH     int
	}{
		{"same orientation", 300, 150, 400, 200, 300, 150},
		{"rotated by exif", 300, 150, 200, 400, 150, 300},
		{"square target", 300, 300, 200, 400, 300, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := oriented(tt.w, tt.h, tt.decW, tt.decH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("oriented() = (%d, %d), want (%d, %d)", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}
