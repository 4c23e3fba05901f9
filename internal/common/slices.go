package common

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// PadTo returns s padded with zero values (or truncated) to exactly n elements.
// The input slice is reused when it already has capacity.
func PadTo[S ~[]E, E any](s S, n int) S {
	if len(s) >= n {
		return s[:n]
	}

	out := s
	var zero E
	for len(out) < n {
		out = append(out, zero)
	}

	return out
}
