package cursorpage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// countRows computes the total number of distinct rows matching the base
// query, ignoring pagination limit/cursor and any grouping or ordering added
// for display purposes.
//
// Grouping changes the row cardinality a plain COUNT(*) would report, so the
// count is taken as COUNT(DISTINCT <table>.<id>) with ORDER BY and GROUP BY
// stripped from a clone of the base query. That recovers the number of
// logical entities even when the base query groups over a join.
func countRows(ctx context.Context, src source) (int64, error) {
	tx := cloneQuery(ctx, src.query).Model(src.model)

	// Dropped the same way gorm.DB.Count drops ordering: the clone owns its
	// own clause map, the caller's query is untouched.
	delete(tx.Statement.Clauses, "ORDER BY")
	delete(tx.Statement.Clauses, "GROUP BY")

	rows, err := tx.
		Select(fmt.Sprintf("COUNT(DISTINCT %s)", qualifyColumn(src.table, src.idColumn))).
		Rows()
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	if len(columns) != 1 {
		return 0, fmt.Errorf("%w: count query returned %d columns", ErrCountUnavailable, len(columns))
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, err
		}

		return 0, fmt.Errorf("%w: count query returned no rows", ErrCountUnavailable)
	}

	var total int64
	if err := rows.Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCountUnavailable, err)
	}

	if rows.Next() {
		return 0, fmt.Errorf("%w: count query returned more than one row", ErrCountUnavailable)
	}

	return total, rows.Err()
}

// cloneQuery returns an independent clone of the query bound to ctx. Each
// pagination branch works on its own clone; nothing is shared mutably with
// the caller's query.
func cloneQuery(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Context: ctx, Initialized: true})
}
