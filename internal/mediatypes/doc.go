// Package mediatypes holds the image format allow-list shared by the probe,
// the walker and the upload handler.
//
// It has no dependencies beyond the standard library so any package can
// import it without creating cycles.
//
//	if mediatypes.IsImage(name) {
//	    // candidate for the catalog
//	}
package mediatypes
