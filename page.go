package cursorpage

// Page is one fetched page of records plus its pagination metadata.
type Page[T any] struct {
	// Rows in the query's sort order, at most Pagination.Limit of them.
	Rows []T
	// Pagination metadata for the whole filtered result set.
	Pagination Pagination
}

// Pagination describes where a page sits within the full result set.
type Pagination struct {
	// RowCount is the total number of distinct rows matching the base query,
	// independent of limit and cursor.
	RowCount int64 `json:"rowCount"`
	// Limit is the effective page size used for the query.
	Limit int `json:"limit"`
	// PageCount is ceil(RowCount / Limit).
	PageCount int64 `json:"pageCount"`
	// Cursors are the boundaries of this page.
	Cursors Cursors `json:"cursors"`
}

// Cursors holds the boundary values of a page. Before are the sort-column
// values of the page's first row, After those of its last row; feed them back
// through Options.Before / Options.After to move through the result set.
// Both are nil for an empty page.
type Cursors struct {
	Before []any `json:"before,omitempty"`
	After  []any `json:"after,omitempty"`
}

// pageCount computes ceil(rowCount / limit); an empty result set has zero pages.
func pageCount(rowCount int64, limit int) int64 {
	if rowCount <= 0 {
		return 0
	}

	return (rowCount + int64(limit) - 1) / int64(limit)
}
