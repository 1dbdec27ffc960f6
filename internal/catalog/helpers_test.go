package catalog

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"

	"image-catalog/internal/media"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) billy.Filesystem {
	t.Helper()
	return osfs.New(t.TempDir())
}

// writeImage stores a PNG of the given size regardless of the extension.
func writeImage(t *testing.T, fs billy.Filesystem, name string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))))
	require.NoError(t, util.WriteFile(fs, name, buf.Bytes(), 0o644))
}

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
}

func mkdir(t *testing.T, fs billy.Filesystem, name string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(name, 0o755))
}

// fakeThumbs records requests and returns the derived path without encoding.
type fakeThumbs struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeThumbs) EnsureThumbnail(_ context.Context, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, source)
	if f.err != nil {
		return "", f.err
	}
	return media.ThumbnailPath(source), nil
}

// summarize renders entries as "path WxH" or "path/" for placeholders.
func summarize(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		switch v := e.(type) {
		case *ImageEntry:
			out = append(out, v.Source+" "+v.Resolution.String())
		case *DirectoryEntry:
			out = append(out, v.Source+"/")
		}
	}
	return out
}
