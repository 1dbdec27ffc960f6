package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"image-catalog/internal/logging"
	"image-catalog/internal/media"
	"image-catalog/internal/metrics"

	"github.com/go-git/go-billy/v5"
)

// Service answers catalog requests against one media filesystem.
type Service struct {
	fs       billy.Filesystem
	thumbs   Thumbnailer
	walker   *Walker
	pageSize int
}

// NewService creates a catalog service. probeWorkers bounds concurrent
// header probes within one directory.
func NewService(fs billy.Filesystem, thumbs Thumbnailer, probeWorkers int) *Service {
	return &Service{
		fs:       fs,
		thumbs:   thumbs,
		walker:   NewWalker(fs, thumbs, probeWorkers),
		pageSize: PageSize,
	}
}

// Filesystem returns the media filesystem the service reads.
func (s *Service) Filesystem() billy.Filesystem {
	return s.fs
}

// Catalog walks the whole tree and returns page number page of the entries
// matching search.
func (s *Service) Catalog(ctx context.Context, search string, page int) (Page, error) {
	entries, err := s.walk(ctx, Filter{Search: search})
	if err != nil {
		return Page{}, err
	}
	return Paginate(entries, page, s.pageSize), nil
}

// Entries walks the whole tree and returns every entry matching search.
func (s *Service) Entries(ctx context.Context, search string) ([]Entry, error) {
	return s.walk(ctx, Filter{Search: search})
}

func (s *Service) walk(ctx context.Context, filter Filter) ([]Entry, error) {
	start := time.Now()
	entries, err := s.walker.Walk(ctx, "", filter)
	metrics.CatalogWalkDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.CatalogWalksTotal.WithLabelValues("success").Inc()
		metrics.CatalogEntriesReturned.Observe(float64(len(entries)))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.CatalogWalksTotal.WithLabelValues("canceled").Inc()
	default:
		metrics.CatalogWalksTotal.WithLabelValues("error").Inc()
		logging.Error("Catalog walk failed: %v", err)
	}
	return entries, err
}

// Delete removes a catalogued image and its cached thumbnail.
func (s *Service) Delete(name string) error {
	err := s.delete(name)
	switch {
	case err == nil:
		metrics.DeletesTotal.WithLabelValues("success").Inc()
	case errors.Is(err, ErrNotFound):
		metrics.DeletesTotal.WithLabelValues("not_found").Inc()
	case errors.Is(err, ErrInvalidPath):
		metrics.DeletesTotal.WithLabelValues("invalid").Inc()
	default:
		metrics.DeletesTotal.WithLabelValues("error").Inc()
	}
	return err
}

func (s *Service) delete(name string) error {
	clean, err := s.imagePath(name)
	if err != nil {
		return err
	}

	info, err := s.fs.Stat(clean)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", clean, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", clean, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", clean, ErrInvalidPath)
	}

	if err := s.fs.Remove(clean); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", clean, ErrNotFound)
		}
		return fmt.Errorf("remove %s: %w", clean, err)
	}

	thumb := media.ThumbnailPath(clean)
	if err := s.fs.Remove(thumb); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Deleted %s but failed to remove thumbnail %s: %v", clean, thumb, err)
	}

	logging.Info("Deleted image %s", clean)
	return nil
}

// Ingest prepares a newly stored image for the catalog by generating its
// thumbnail.
func (s *Service) Ingest(ctx context.Context, name string) (string, error) {
	clean, err := s.imagePath(name)
	if err != nil {
		return "", err
	}
	return s.thumbs.EnsureThumbnail(ctx, clean)
}

// Warm walks the tree once, generating every missing representative
// thumbnail, and returns the number of representatives.
func (s *Service) Warm(ctx context.Context) (int, error) {
	entries, err := s.Entries(ctx, "")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range entries {
		if !e.IsDirectory() {
			count++
		}
	}
	return count, nil
}

// imagePath cleans name and checks that it names a catalogable image file.
func (s *Service) imagePath(name string) (string, error) {
	clean, err := CleanPath(name)
	if err != nil {
		return "", fmt.Errorf("%q: %w", name, err)
	}
	if !(Filter{}).Match(clean) {
		return "", fmt.Errorf("%s is not a catalogued image: %w", clean, ErrInvalidPath)
	}
	return clean, nil
}

// ensure *media.ThumbnailStore satisfies Thumbnailer.
var _ Thumbnailer = (*media.ThumbnailStore)(nil)
