package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"image-catalog/internal/catalog"
	"image-catalog/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mediaTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "alpha", "a.png"), 10, 10)
	writePNG(t, filepath.Join(dir, "alpha", "b.png"), 30, 20)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	return dir
}

func samplePage() catalog.Page {
	return catalog.Page{
		Entries: []catalog.Entry{
			&catalog.ImageEntry{Source: "alpha/b.png", Thumbnail: "alpha/thumb_b.png", Resolution: media.Resolution{Width: 30, Height: 20}},
			&catalog.DirectoryEntry{Source: "empty"},
		},
		PageNumber:   1,
		TotalPages:   1,
		TotalEntries: 2,
	}
}

func TestWritePage_Formats(t *testing.T) {
	page := newListedPage(samplePage())

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writePage(&buf, page, "json"))

		var got listedPage
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, page, got)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writePage(&buf, page, "yaml"))
		assert.Contains(t, buf.String(), "path: alpha/b.png")
		assert.Contains(t, buf.String(), "isDirectory: true")

		var got listedPage
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, page, got)
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writePage(&buf, page, "text"))
		assert.Equal(t,
			"alpha/b.png\t30x20\talpha/thumb_b.png\nempty/\t(empty)\npage 1 of 1 (2 entries)\n",
			buf.String())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, writePage(&bytes.Buffer{}, page, "xml"))
	})
}

func TestListCommand(t *testing.T) {
	dir := mediaTree(t)
	t.Setenv("MEDIA_DIR", dir)

	out, err := runRoot(t, "list", "--output", "json")
	require.NoError(t, err, out)

	var got listedPage
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 2, got.TotalEntries)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "alpha/b.png", got.Entries[0].Path)
	assert.Equal(t, "empty", got.Entries[1].Path)
	assert.True(t, got.Entries[1].IsDirectory)

	_, err = os.Stat(filepath.Join(dir, "alpha", "thumb_b.png"))
	assert.NoError(t, err, "listing generates the representative thumbnail")
}

func TestListCommand_MediaDirFlag(t *testing.T) {
	dir := mediaTree(t)
	t.Setenv("MEDIA_DIR", filepath.Join(t.TempDir(), "unused"))

	out, err := runRoot(t, "list", "--media-dir", dir, "--search", "a.png", "--output", "yaml")
	require.NoError(t, err, out)

	var got listedPage
	require.NoError(t, yaml.Unmarshal([]byte(out), &got), out)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "alpha/a.png", got.Entries[0].Path)
}

func TestListCommand_Errors(t *testing.T) {
	t.Setenv("MEDIA_DIR", filepath.Join(t.TempDir(), "missing"))

	_, err := runRoot(t, "list")
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)

	_, err = runRoot(t, "list", "--thumbnail-backend", "magick")
	assert.Error(t, err)

	_, err = runRoot(t, "list", "--log-level", "loud")
	assert.Error(t, err)
}

func TestWarmCommand(t *testing.T) {
	dir := mediaTree(t)
	t.Setenv("MEDIA_DIR", dir)

	out, err := runRoot(t, "warm")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 thumbnails ready")

	_, err = os.Stat(filepath.Join(dir, "alpha", "thumb_b.png"))
	assert.NoError(t, err)
}
