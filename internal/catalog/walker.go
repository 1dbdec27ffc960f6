package catalog

import (
	"context"
	"fmt"
	"os"
	"path"

	"image-catalog/internal/logging"
	"image-catalog/internal/media"
	"image-catalog/internal/mediatypes"
	"image-catalog/internal/metrics"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"
)

// Thumbnailer produces the thumbnail for a representative image.
type Thumbnailer interface {
	EnsureThumbnail(ctx context.Context, source string) (string, error)
}

// Walker reduces a directory tree to catalog entries.
type Walker struct {
	fs      billy.Filesystem
	thumbs  Thumbnailer
	workers int
}

// NewWalker creates a walker probing up to workers files of one directory at
// a time.
func NewWalker(fs billy.Filesystem, thumbs Thumbnailer, workers int) *Walker {
	return &Walker{fs: fs, thumbs: thumbs, workers: max(1, workers)}
}

// Walk returns the entries for the tree at root ("" is the filesystem root).
func (w *Walker) Walk(ctx context.Context, root string, filter Filter) ([]Entry, error) {
	infos, err := w.fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	entries, _, err := w.walkDir(ctx, root, infos, filter)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// walkDir reduces dir, whose listing is infos. The boolean reports whether
// any matching image exists in the subtree.
func (w *Walker) walkDir(ctx context.Context, dir string, infos []os.FileInfo, filter Filter) ([]Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	metrics.CatalogDirectoriesVisited.Inc()

	var matches, subdirs []string
	for _, info := range infos {
		name := info.Name()
		if mediatypes.IsHidden(name) {
			continue
		}
		if info.IsDir() {
			subdirs = append(subdirs, path.Join(dir, name))
		} else if filter.Match(name) {
			matches = append(matches, path.Join(dir, name))
		}
	}

	if len(matches) > 0 {
		entry, err := w.representative(ctx, matches)
		if err != nil {
			return nil, false, err
		}
		if entry != nil {
			return []Entry{entry}, true, nil
		}
		// No match could be decoded; reduce as if the directory had none.
		metrics.CatalogUnusableDirectories.Inc()
		logging.Warn("No decodable image among %d matches in %s", len(matches), displayDir(dir))
	}

	var entries []Entry
	found := false
	for _, sub := range subdirs {
		childInfos, err := w.fs.ReadDir(sub)
		if err != nil {
			metrics.CatalogListErrors.Inc()
			logging.Warn("Skipping unreadable directory %s: %v", sub, err)
			continue
		}

		child, childFound, err := w.walkDir(ctx, sub, childInfos, filter)
		if err != nil {
			return nil, false, err
		}
		entries = append(entries, child...)
		found = found || childFound
	}

	if !found {
		return []Entry{&DirectoryEntry{Source: displayDir(dir)}}, false, nil
	}
	return entries, true, nil
}

// displayDir names the root "." and leaves other directories unchanged.
func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

// representative probes candidates and returns the largest with its
// thumbnail. Results are indexed by listing position so the first listed
// wins ties however the probes are scheduled. It returns nil when every
// candidate probes as 0x0.
func (w *Walker) representative(ctx context.Context, candidates []string) (*ImageEntry, error) {
	resolutions := make([]media.Resolution, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(w.workers)
	for i, name := range candidates {
		g.Go(func() error {
			resolutions[i] = media.Probe(w.fs, name)
			return nil
		})
	}
	_ = g.Wait()

	best := 0
	for i := 1; i < len(candidates); i++ {
		if resolutions[i].Pixels() > resolutions[best].Pixels() {
			best = i
		}
	}

	if resolutions[best].IsZero() {
		return nil, nil
	}

	thumb, err := w.thumbs.EnsureThumbnail(ctx, candidates[best])
	if err != nil {
		return nil, err
	}

	return &ImageEntry{
		Source:     candidates[best],
		Thumbnail:  thumb,
		Resolution: resolutions[best],
	}, nil
}
