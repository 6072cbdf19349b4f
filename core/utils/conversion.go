package utils

// IntOr returns v when it is positive, otherwise fallback.
// Catalog numbers such as disc and track number are 1-based; 0 means "not reported".
func IntOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// MillisToSeconds converts a duration in milliseconds to whole seconds, rounding up.
// Non-positive input yields 0.
func MillisToSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}
