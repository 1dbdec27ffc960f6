package catalog

import (
	"path"
	"strings"

	"image-catalog/internal/media"
	"image-catalog/internal/mediatypes"
)

// Filter selects the files that take part in the catalog.
type Filter struct {
	// Search is matched case-insensitively against the file name. Empty
	// matches everything.
	Search string
}

// Match reports whether the file called name is catalogued under f.
func (f Filter) Match(name string) bool {
	base := path.Base(name)
	if mediatypes.IsHidden(base) || media.IsThumbnail(base) || !mediatypes.IsImage(base) {
		return false
	}
	if f.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(base), strings.ToLower(f.Search))
}

// CleanPath normalizes a client supplied path to the slash separated,
// root-relative form used by the catalog. Leading slashes are dropped; any
// ".." element is rejected.
func CleanPath(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}

	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" {
		return "", ErrInvalidPath
	}
	return clean, nil
}
