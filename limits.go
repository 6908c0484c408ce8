package cursorpage

import "github.com/spf13/cast"

// DefaultLimit is the page size applied when no usable limit is supplied.
const DefaultLimit = 10

// NormalizeLimit coerces a caller-supplied limit into a positive page size.
// Anything that does not parse to a positive integer (nil, "abc", zero,
// negatives) silently becomes DefaultLimit; a bad limit is never an error.
func NormalizeLimit(limit any) int {
	if limit == nil {
		return DefaultLimit
	}

	ret, err := cast.ToIntE(limit)
	if err != nil || ret <= 0 {
		return DefaultLimit
	}

	return ret
}
