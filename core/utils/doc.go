// Package utils provides common utility functions for the itunes2storage application.
// It includes helper functions for value conversion, file-name sanitising, and other
// shared logic that doesn't fit into domain-specific packages.
package utils
