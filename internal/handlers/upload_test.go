package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"image-catalog/internal/events"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_StoresAndIngests(t *testing.T) {
	env := newTestEnv(t, Options{})

	req := multipartRequest(t, "trip",
		uploadPart{"images", "one.png", pngBytes(t, 8, 8)},
		uploadPart{"images", "two.png", pngBytes(t, 600, 300)},
	)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp UploadResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "uploaded", resp.Status)
	assert.Equal(t, []UploadedImage{
		{Path: "/images/trip/one.png", ThumbnailPath: "/thumbnails/trip/thumb_one.png"},
		{Path: "/images/trip/two.png", ThumbnailPath: "/thumbnails/trip/thumb_two.png"},
	}, resp.Images)

	for _, name := range []string{"trip/one.png", "trip/two.png", "trip/thumb_one.png", "trip/thumb_two.png"} {
		_, err := env.fs.Stat(name)
		assert.NoError(t, err, name)
	}

	infos, err := env.fs.ReadDir("trip")
	require.NoError(t, err)
	assert.Len(t, infos, 4, "no temporary files are left behind")

	got := env.events.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, events.ImageAdded, got[0].Type)
	assert.Equal(t, "trip/one.png", got[0].Path)
	assert.Equal(t, "trip/two.png", got[1].Path)
}

func TestUpload_SingleImageField(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(multipartRequest(t, "", uploadPart{"image", "solo.jpg", pngBytes(t, 4, 4)}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, err := env.fs.Stat("solo.jpg")
	assert.NoError(t, err)
}

func TestUpload_ReplaceKeepsCachedThumbnail(t *testing.T) {
	env := newTestEnv(t, Options{})
	writeImage(t, env.fs, "pic.png", 4, 4)
	require.NoError(t, util.WriteFile(env.fs, "thumb_pic.png", []byte("cached"), 0o644))

	rec := env.do(multipartRequest(t, "", uploadPart{"images", "pic.png", pngBytes(t, 16, 16)}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := util.ReadFile(env.fs, "pic.png")
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t, 16, 16), stored)

	thumb, err := util.ReadFile(env.fs, "thumb_pic.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), thumb)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		parts    []uploadPart
		wantCode int
	}{
		{"no files", "", nil, http.StatusBadRequest},
		{"wrong field", "", []uploadPart{{"file", "a.png", []byte("x")}}, http.StatusBadRequest},
		{"unsupported extension", "", []uploadPart{{"images", "a.txt", []byte("x")}}, http.StatusBadRequest},
		{"thumbnail name", "", []uploadPart{{"images", "thumb_a.png", []byte("x")}}, http.StatusBadRequest},
		{"hidden file", "", []uploadPart{{"images", ".a.png", []byte("x")}}, http.StatusBadRequest},
		{"escaping dir", "../out", []uploadPart{{"images", "a.png", []byte("x")}}, http.StatusBadRequest},
		{"hidden dir", "x/.cache", []uploadPart{{"images", "a.png", []byte("x")}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})

			rec := env.do(multipartRequest(t, tt.dir, tt.parts...))
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			infos, err := env.fs.ReadDir("")
			require.NoError(t, err)
			assert.Empty(t, infos)
			assert.Empty(t, env.events.snapshot())
		})
	}
}

func TestUpload_RejectsMixedBatch(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(multipartRequest(t, "",
		uploadPart{"images", "good.png", pngBytes(t, 4, 4)},
		uploadPart{"images", "bad.exe", []byte("MZ")},
	))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := env.fs.Stat("good.png")
	assert.Error(t, err, "nothing is stored when any file is rejected")
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t, Options{MaxUploadBytes: 1024})

	rec := env.do(multipartRequest(t, "", uploadPart{"images", "big.png", bytes.Repeat([]byte("x"), 4096)}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUpload_RejectsUndecodableImage(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		content []byte
	}{
		{"garbage in root", "", []byte("not a png")},
		{"garbage in new album", "fresh", []byte("not a png")},
		{"empty file", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})

			rec := env.do(multipartRequest(t, tt.dir, uploadPart{"images", "broken.png", tt.content}))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Not a readable image: broken.png"}`, rec.Body.String())
			assert.Empty(t, env.events.snapshot())

			_, err := env.fs.Stat(path.Join(tt.dir, "broken.png"))
			assert.True(t, errors.Is(err, os.ErrNotExist), "rejected upload is not stored")

			rec = env.do(httptest.NewRequest(http.MethodGet, "/get-images", nil))
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestUpload_FailedIngestRemovesFile(t *testing.T) {
	env := newTestEnv(t, Options{})

	// The PNG header is intact but the pixel data is cut off.
	truncated := pngBytes(t, 50, 50)[:40]
	rec := env.do(multipartRequest(t, "", uploadPart{"images", "cut.png", truncated}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate thumbnail"}`, rec.Body.String())
	assert.Empty(t, env.events.snapshot())

	_, err := env.fs.Stat("cut.png")
	assert.True(t, errors.Is(err, os.ErrNotExist), "unusable upload is removed")

	rec = env.do(httptest.NewRequest(http.MethodGet, "/get-images", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp CatalogResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.Images, 1)
	assert.True(t, resp.Images[0].IsDirectory)
}
