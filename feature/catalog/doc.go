// Package catalog reads the iTunes library file.
//
// The library is an XML (or binary) property list. Decode turns it into typed records
// (Document, Track, Playlist) up front, so a structurally invalid file fails once with
// ErrCatalogMalformed instead of surfacing as missing fields during extraction.
// A file that cannot be read at all fails with ErrCatalogUnreadable.
//
// Loader adds a small cache keyed by path, modification time and size, which keeps
// watch mode from decoding an unchanged library twice.
package catalog
