// package common contains small generic helpers shared across the module;
// they are plain functions, not interface-wrapped types.
package common

// Coalesce walks the candidates in order and picks the first that is not
// T's zero value, which makes it the one-liner for defaulting optional
// configuration ("use what the caller set, else the fallback").
//
// Parameters:
//   - values: candidate values, highest priority first
//
// Returns:
//   - T: the first non-zero candidate, or T's zero value when every
//     candidate is zero or none are given
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
