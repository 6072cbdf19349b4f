// Package integrity verifies that the mirror directory matches its persisted state.
//
// Unlike the 'mirror' package which reconciles the mirror with the catalog,
// this package compares the mirror with its own record and repairs drift caused outside a sync.
//
// # Checks Provided
//
//   - Structure: the mirror root and app directory exist (and are directories).
//   - Files: every state entry has its file, and every media file in the mirror root belongs to an entry.
//     Skipped when the state cannot be read.
//
// # Fixing
//
// Missing directories are created, orphan files are deleted, and entries whose file is missing are
// dropped from the state so the next sync copies them again. Files other than media files are never
// touched, and nothing is deleted while the state is unreadable.
package integrity
