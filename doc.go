package cursorpage

// Package cursorpage provides keyset (cursor-based) pagination over
// caller-provided GORM queries.
//
// Overview
//
// Given an arbitrary query with a multi-column ORDER BY, cursorpage returns a
// bounded page of rows plus cursors that let a caller fetch the next or
// previous page without re-scanning skipped rows. Offset pagination degrades
// linearly with the offset and shifts under concurrent inserts; keyset
// pagination does neither, at the cost of requiring a deterministic ordering.
//
// Key concepts
//   - FetchPage: paginates a whole table (plus whatever conditions the caller
//     already put on the query).
//   - FetchAssociatedPage: paginates a "has many"/"has one" collection scoped
//     to a single owner record.
//   - Cursor: a page boundary, expressed as the sort-column values of the
//     first (before) or last (after) row of a page.
//   - SortColumns: the normalized ORDER BY of the query; its order is the
//     comparison precedence of the keyset predicate.
//
// The total row count is computed with COUNT(DISTINCT <table>.<id>) against
// the base query, independently of limit and cursor, so Pagination.RowCount
// reflects the full filtered result set. The page fetch and the count run
// concurrently on independent clones of the base query.
