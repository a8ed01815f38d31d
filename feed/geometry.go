package feed

// Insets are safe area insets of the device viewport.
type Insets struct {
	Top    float64
	Bottom float64
}

// PageLength returns length of a single page - viewport height without safe
// area insets. Result is never negative.
func PageLength(viewportHeight float64, insets Insets) float64 {
	return max(viewportHeight-insets.Top-insets.Bottom, 0)
}

// PageOffset returns scroll offset at which page index starts.
func PageOffset(index int, pageLength float64) float64 {
	return float64(index) * pageLength
}
