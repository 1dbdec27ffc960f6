package media

import (
	"context"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"image-catalog/internal/logging"
	"image-catalog/internal/metrics"

	"github.com/go-git/go-billy/v5"
)

const (
	// ThumbnailPrefix marks a file as a generated thumbnail. Files carrying it
	// are never catalogued themselves.
	ThumbnailPrefix = "thumb_"

	// ThumbnailSize is the length of the long edge of a generated thumbnail.
	ThumbnailSize = 300

	// ThumbnailQuality is the JPEG quality used for every thumbnail.
	ThumbnailQuality = 80
)

// ThumbnailPath returns the cache location for source: the same directory,
// basename prefixed with ThumbnailPrefix.
func ThumbnailPath(source string) string {
	dir, base := path.Split(source)
	return dir + ThumbnailPrefix + base
}

// IsThumbnail reports whether the basename of name carries ThumbnailPrefix.
func IsThumbnail(name string) bool {
	return strings.HasPrefix(path.Base(name), ThumbnailPrefix)
}

// TargetSize computes thumbnail dimensions for a width x height source. The
// long edge becomes ThumbnailSize and the short edge is rounded to preserve
// the aspect ratio. Sources already within ThumbnailSize keep their size.
func TargetSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if width <= ThumbnailSize && height <= ThumbnailSize {
		return width, height
	}

	if width > height {
		return ThumbnailSize, max(1, int(math.Round(float64(ThumbnailSize*height)/float64(width))))
	}
	return max(1, int(math.Round(float64(ThumbnailSize*width)/float64(height)))), ThumbnailSize
}

// ThumbnailStore generates and caches thumbnails on a filesystem.
type ThumbnailStore struct {
	fs    billy.Filesystem
	codec Codec
}

// NewThumbnailStore creates a store writing thumbnails with codec.
func NewThumbnailStore(fs billy.Filesystem, codec Codec) *ThumbnailStore {
	return &ThumbnailStore{fs: fs, codec: codec}
}

// Codec returns the codec the store was built with.
func (s *ThumbnailStore) Codec() Codec {
	return s.codec
}

// EnsureThumbnail returns the thumbnail path for source, generating it first
// if no file exists there. Generation errors are returned to the caller.
func (s *ThumbnailStore) EnsureThumbnail(ctx context.Context, source string) (string, error) {
	thumb := ThumbnailPath(source)
	if _, err := s.fs.Stat(thumb); err == nil {
		metrics.ThumbnailCacheTotal.WithLabelValues("hit").Inc()
		return thumb, nil
	}
	metrics.ThumbnailCacheTotal.WithLabelValues("miss").Inc()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	if err := s.generate(source, thumb); err != nil {
		return "", fmt.Errorf("thumbnail for %s: %w", source, err)
	}
	metrics.ThumbnailGenerationDuration.WithLabelValues(s.codec.Name()).Observe(time.Since(start).Seconds())
	logging.Debug("Generated thumbnail %s in %v", thumb, time.Since(start))

	return thumb, nil
}

var tempSeq atomic.Uint64

// tempName is a hidden sibling of thumb, unique per call.
func tempName(thumb string) string {
	dir, base := path.Split(thumb)
	return dir + "." + base + ".tmp-" +
		strconv.FormatInt(time.Now().UnixNano(), 36) + "-" +
		strconv.FormatUint(tempSeq.Add(1), 36)
}

func (s *ThumbnailStore) generate(source, thumb string) error {
	res := Probe(s.fs, source)
	if res.IsZero() {
		metrics.ThumbnailErrors.WithLabelValues("probe").Inc()
		return fmt.Errorf("cannot determine dimensions of %s", source)
	}
	width, height := TargetSize(res.Width, res.Height)

	src, err := s.fs.Open(source)
	if err != nil {
		metrics.ThumbnailErrors.WithLabelValues("open").Inc()
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", source, err)
		}
	}()

	tmp := tempName(thumb)
	dst, err := s.fs.Create(tmp)
	if err != nil {
		metrics.ThumbnailErrors.WithLabelValues("write").Inc()
		return err
	}

	encodeErr := s.codec.Thumbnail(src, dst, width, height)
	closeErr := dst.Close()
	if encodeErr != nil || closeErr != nil {
		s.discard(tmp)
		if encodeErr != nil {
			metrics.ThumbnailErrors.WithLabelValues("encode").Inc()
			return encodeErr
		}
		metrics.ThumbnailErrors.WithLabelValues("write").Inc()
		return closeErr
	}

	if err := s.fs.Rename(tmp, thumb); err != nil {
		s.discard(tmp)
		metrics.ThumbnailErrors.WithLabelValues("rename").Inc()
		return err
	}
	return nil
}

func (s *ThumbnailStore) discard(tmp string) {
	if err := s.fs.Remove(tmp); err != nil {
		logging.Warn("failed to remove temporary thumbnail %s: %v", tmp, err)
	}
}
