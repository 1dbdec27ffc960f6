package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"image-catalog/internal/catalog"
	"image-catalog/internal/events"
	"image-catalog/internal/media"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type testEnv struct {
	fs     billy.Filesystem
	h      *Handlers
	router *mux.Router
	events *recorder
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	return newTestEnvFS(t, osfs.New(t.TempDir()), opts)
}

func newTestEnvFS(t *testing.T, fs billy.Filesystem, opts Options) *testEnv {
	t.Helper()
	rec := &recorder{}
	if opts.Publisher == nil {
		opts.Publisher = rec
	}
	svc := catalog.NewService(fs, media.NewThumbnailStore(fs, media.ImagingCodec{}), 2)
	h := New(svc, opts)
	return &testEnv{fs: fs, h: h, router: NewRouter(h, ""), events: rec}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func writeImage(t *testing.T, fs billy.Filesystem, name string, width, height int) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, pngBytes(t, width, height), 0o644))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// uploadPart is one file part of a multipart upload.
type uploadPart struct {
	field    string
	filename string
	content  []byte
}

func multipartRequest(t *testing.T, dir string, parts ...uploadPart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if dir != "" {
		require.NoError(t, mw.WriteField("dir", dir))
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
