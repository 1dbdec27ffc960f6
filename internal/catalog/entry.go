package catalog

import "image-catalog/internal/media"

// Entry is one row of the catalog: an *ImageEntry or a *DirectoryEntry.
type Entry interface {
	// SourcePath is slash separated and relative to the catalog root.
	SourcePath() string
	IsDirectory() bool
}

// ImageEntry is the representative image of a directory.
type ImageEntry struct {
	Source     string
	Thumbnail  string
	Resolution media.Resolution
}

// SourcePath implements Entry.
func (e *ImageEntry) SourcePath() string { return e.Source }

// IsDirectory implements Entry.
func (e *ImageEntry) IsDirectory() bool { return false }

// DirectoryEntry marks a directory with no matching image anywhere below it.
type DirectoryEntry struct {
	Source string
}

// SourcePath implements Entry.
func (e *DirectoryEntry) SourcePath() string { return e.Source }

// IsDirectory implements Entry.
func (e *DirectoryEntry) IsDirectory() bool { return true }
