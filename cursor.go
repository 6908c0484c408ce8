package cursorpage

import (
	"fmt"
	"reflect"
)

// CursorType marks which page boundary a cursor points at.
type CursorType string

const (
	// CursorAfter seeks rows following the boundary (forward).
	CursorAfter CursorType = "after"
	// CursorBefore seeks rows preceding the boundary (backward).
	CursorBefore CursorType = "before"
)

// Cursor is a page boundary: an ordered list of sort-column values plus a
// direction. Value order follows the sort-column order of the paginated
// query. Cursors are value objects; they are copied, never shared.
type Cursor struct {
	Type   CursorType
	Values []any
}

// ValueReader reads the named attribute off a fetched record. The default
// reader resolves attributes through the model's parsed GORM schema, which is
// where the column-name-equals-field-name constraint comes from: a sort
// column can only feed a cursor when the record exposes an attribute of the
// same name.
type ValueReader func(record any, column string) (any, error)

// parseCursorInput validates raw after/before input and produces a Cursor,
// or nil for the first page. At most one bound may be present and each bound
// must be an ordered sequence of scalars; violations fail with
// ErrInvalidCursorInput.
func parseCursorInput(after, before any) (*Cursor, error) {
	afterValues, afterOK := toScalarSlice(after)
	beforeValues, beforeOK := toScalarSlice(before)

	switch {
	case !afterOK:
		return nil, fmt.Errorf("%w: 'after' must be an ordered sequence, got %T", ErrInvalidCursorInput, after)
	case !beforeOK:
		return nil, fmt.Errorf("%w: 'before' must be an ordered sequence, got %T", ErrInvalidCursorInput, before)
	case afterValues != nil && beforeValues != nil:
		return nil, fmt.Errorf("%w: 'after' and 'before' are mutually exclusive", ErrInvalidCursorInput)
	case afterValues != nil:
		return &Cursor{Type: CursorAfter, Values: afterValues}, nil
	case beforeValues != nil:
		return &Cursor{Type: CursorBefore, Values: beforeValues}, nil
	default:
		return nil, nil
	}
}

// toScalarSlice reflects any slice or array into []any. Absent input (nil, or
// a typed nil slice) reports (nil, true); non-sequence input reports
// (nil, false).
func toScalarSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, true
		}
	case reflect.Array:
	default:
		return nil, false
	}

	ret := make([]any, rv.Len())
	for i := range ret {
		ret[i] = rv.Index(i).Interface()
	}

	return ret, true
}

// pageCursors derives the backward and forward cursors of a fetched page:
// Before holds the sort-column values of the first returned row, After those
// of the last, both in the page's sort order. An empty page has no cursors.
func pageCursors[T any](rows []T, sort SortColumns, read ValueReader) (Cursors, error) {
	if len(rows) == 0 {
		return Cursors{}, nil
	}

	before, err := rowValues(rows[0], sort, read)
	if err != nil {
		return Cursors{}, err
	}

	after, err := rowValues(rows[len(rows)-1], sort, read)
	if err != nil {
		return Cursors{}, err
	}

	return Cursors{Before: before, After: after}, nil
}

func rowValues[T any](row T, sort SortColumns, read ValueReader) ([]any, error) {
	ret := make([]any, 0, len(sort))
	for _, sortColumn := range sort {
		value, err := read(row, sortColumn.Name)
		if err != nil {
			return nil, fmt.Errorf("cannot build page cursor: %w", err)
		}

		ret = append(ret, value)
	}

	return ret, nil
}
