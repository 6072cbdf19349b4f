// Package mirror keeps the target directory in sync with the extracted track set.
//
// The persisted State (tracks.json in the app directory) records, for every mirrored
// persistent ID, the file that was written and the catalog modification time it was copied at.
// Engine diffs a fresh track set against that state with core/reconcile:
//
//   - added: a persistent ID missing from the state is copied
//   - updated: a persistent ID whose modification time (or destination) changed is copied again
//   - removed: a persistent ID no longer in the track set has its file deleted
//
// Copies run before deletions. A failed copy or deletion is logged and reported but never stops
// the batch. The new state leaves failed adds out and keeps the prior entry of failed updates
// and deletions, so the next run retries them. Only failing to persist the state is fatal.
package mirror
