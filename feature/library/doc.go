// Package library derives what to mirror from a decoded catalog.
//
// Extract picks the playlists selected by the configured prefix and produces the playlist
// set (name to ordered persistent IDs) and the track set (persistent ID to canonical metadata).
// Every track is mirrored flat as "<PersistentID><ext>" in the mirror root; DestinationPath
// depends on the track alone, so the same catalog entry always lands on the same file.
package library
