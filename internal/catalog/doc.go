/*
Package catalog builds the paginated image catalog from a directory tree.

Every request walks the tree again; nothing is cached between requests
except the thumbnails themselves (see package media).

# Reduction

Each directory reduces to entries as follows:

  - It has matching files of its own: one ImageEntry for the match with the
    largest width*height (the first listed wins ties). Subdirectories are not
    visited.
  - It has no matches of its own but some subdirectory holds one: the entries
    of every subdirectory, concatenated in listing order.
  - Nothing matches anywhere below it: a single DirectoryEntry placeholder.

A file matches when it has an allow-listed image extension, is not a
thumbnail, is not hidden and, when a search term is set, contains the term
in its name (case-insensitive). The same filter applies at every level.

# Errors

An unreadable root is ErrCatalogUnavailable. An unreadable subdirectory is
logged and skipped. A representative whose thumbnail cannot be produced
fails the whole walk.
*/
package catalog
