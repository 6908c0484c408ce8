package cursorpage

import "errors"

var (
	// ErrInvalidCursorInput reports that after/before input is not an ordered
	// sequence of scalars, or that both bounds were supplied at once.
	ErrInvalidCursorInput = errors.New("invalid cursor input")

	// ErrUnsupportedSortTarget reports an ORDER BY column qualified by a table
	// other than the one being paginated. Keyset pagination across joined
	// tables is unsupported.
	ErrUnsupportedSortTarget = errors.New("unsupported sort target")

	// ErrCursorSortMismatch reports a cursor whose value count differs from
	// the number of active sort columns.
	ErrCursorSortMismatch = errors.New("cursor does not match sort columns")

	// ErrCountUnavailable reports that the count query did not return exactly
	// one scalar row. Indicates a broken assumption about the underlying
	// engine rather than a caller mistake.
	ErrCountUnavailable = errors.New("row count unavailable")
)
