// Package playlist writes the extended M3U manifests of the mirrored playlists.
//
// Emission is a full regeneration: every *.m3u in the app directory is removed first, so
// playlists renamed or dropped in the catalog leave nothing behind. Each manifest looks like
//
//	#EXTM3U
//	# Playlist created by itunes2storage, author: someone
//
//	#EXTINF:216,Record - Band
//	../AAAA000000000001.mp3
//
// Paths are relative to the manifest and always use forward slashes.
package playlist
