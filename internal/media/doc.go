// Package media probes image dimensions and maintains the on-disk thumbnail
// cache next to each source image.
//
// Thumbnails live in the same directory as their source, named with
// ThumbnailPrefix followed by the source basename. The existence of that file
// is the cache: it is never invalidated, and a present file is returned
// without touching the source. Generation scales the long edge down to
// ThumbnailSize and always writes JPEG, whatever the source format.
//
// Two codecs are available:
//   - ImagingCodec: pure Go (disintegration/imaging), the default
//   - VipsCodec: libvips via govips, decode-time shrinking for large JPEGs
package media
