package cursorpage

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Direction defines the sort direction of a single sort column.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (d Direction) Valid() bool {
	return d == DirectionASC || d == DirectionDESC
}

// ForOperator maps the direction to the strict comparison that selects rows
// AFTER a boundary under this direction.
func (d Direction) ForOperator() Operator {
	switch d {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", d))
	}
}

type (
	// SortColumn is one ORDER BY entry of the paginated query. Name is the
	// bare column name; it doubles as the record attribute the cursor values
	// are read from, which is why it is kept unqualified.
	SortColumn struct {
		Name      string
		Direction Direction
	}

	// SortColumns is an ordered sequence of sort columns. The order defines
	// the lexicographic comparison precedence of the keyset predicate.
	SortColumns []SortColumn
)

var _availableColumnNameSymbols = append([]rune("_'`\""), lo.AlphanumericCharset...)

func (s SortColumn) validate() error {
	if !s.Direction.Valid() {
		return fmt.Errorf("invalid sort direction '%s'", s.Direction)
	}

	// Guard against SQL injection by restricting allowed characters in column names.
	if s.Name == "" || !lo.Every(_availableColumnNameSymbols, []rune(s.Name)) {
		return fmt.Errorf("sort column name contains forbidden symbols '%s'", s.Name)
	}

	return nil
}

// ToSQLSlice converts SortColumns to a slice of strings in the form
// "<column> <direction>" suitable for SQL query builders.
func (s SortColumns) ToSQLSlice() []string {
	ret := make([]string, 0, len(s))
	for _, column := range s {
		ret = append(ret, fmt.Sprintf("%s %s", column.Name, column.Direction))
	}

	return ret
}

// ToSQL converts SortColumns to a single string suitable for embedding into
// an SQL query. Example: for [{"a", "ASC"}, {"b", "DESC"}] returns
// "a ASC, b DESC".
func (s SortColumns) ToSQL() string {
	return strings.Join(s.ToSQLSlice(), ", ")
}

// Reversed returns a copy of the sort with every direction inverted. A
// backward page fetch runs under the reversed ordering so that LIMIT trims
// the rows closest to the boundary.
func (s SortColumns) Reversed() SortColumns {
	return lo.Map(s, func(column SortColumn, _ int) SortColumn {
		return SortColumn{
			Name:      column.Name,
			Direction: lo.Ternary(column.Direction == DirectionASC, DirectionDESC, DirectionASC),
		}
	})
}

// normalizeSort resolves the accumulated ORDER BY of a query statement into
// SortColumns, preserving clause order. When the statement carries no
// ordering, a single ascending sort on the identity column is synthesized and
// reported via the second return so the caller knows to attach it to the
// page query.
//
// Every column must belong to the paginated table: a qualifier naming any
// other table fails with ErrUnsupportedSortTarget.
func normalizeSort(stmt *gorm.Statement, table, idColumn string) (SortColumns, bool, error) {
	orderBy, ok := statementOrderBy(stmt)
	if !ok || len(orderBy.Columns) == 0 {
		return SortColumns{{Name: idColumn, Direction: DirectionASC}}, true, nil
	}

	ret := make(SortColumns, 0, len(orderBy.Columns))
	for _, col := range orderBy.Columns {
		if col.Column.Raw {
			parsed, err := parseRawOrdering(col.Column.Name, table, idColumn)
			if err != nil {
				return nil, false, err
			}

			ret = append(ret, parsed...)
			continue
		}

		qualifier := col.Column.Table
		if qualifier == clause.CurrentTable {
			qualifier = table
		}
		if qualifier != "" && qualifier != table {
			return nil, false, fmt.Errorf("%w: cannot sort by '%s.%s' while paginating '%s'",
				ErrUnsupportedSortTarget, qualifier, col.Column.Name, table)
		}

		name := col.Column.Name
		if name == clause.PrimaryKey {
			name = idColumn
		}

		sortColumn := SortColumn{
			Name:      name,
			Direction: lo.Ternary(col.Desc, DirectionDESC, DirectionASC),
		}
		if err := sortColumn.validate(); err != nil {
			return nil, false, err
		}

		ret = append(ret, sortColumn)
	}

	return ret, false, nil
}

func statementOrderBy(stmt *gorm.Statement) (clause.OrderBy, bool) {
	if stmt == nil || stmt.Clauses == nil {
		return clause.OrderBy{}, false
	}

	c, ok := stmt.Clauses["ORDER BY"]
	if !ok {
		return clause.OrderBy{}, false
	}

	orderBy, ok := c.Expression.(clause.OrderBy)
	return orderBy, ok
}

// parseRawOrdering handles orderings added as raw strings, e.g.
// Order("name DESC") or Order("books.title, id desc"). Each comma-separated
// entry is "<column>" or "<column> asc|desc", the column optionally qualified
// as "<table>.<column>".
func parseRawOrdering(raw, table, idColumn string) (SortColumns, error) {
	entries := strings.Split(raw, ",")

	ret := make(SortColumns, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Fields(strings.TrimSpace(entry))

		direction := DirectionASC
		switch len(fields) {
		case 1:
		case 2:
			direction = Direction(strings.ToUpper(fields[1]))
			if !direction.Valid() {
				return nil, fmt.Errorf("invalid ordering direction '%s' in '%s'", fields[1], entry)
			}
		default:
			return nil, fmt.Errorf("invalid ordering clause '%s'", entry)
		}

		qualifier, name := splitQualified(fields[0])
		if qualifier != "" && qualifier != table {
			return nil, fmt.Errorf("%w: cannot sort by '%s.%s' while paginating '%s'",
				ErrUnsupportedSortTarget, qualifier, name, table)
		}
		if name == clause.PrimaryKey {
			name = idColumn
		}

		sortColumn := SortColumn{Name: name, Direction: direction}
		if err := sortColumn.validate(); err != nil {
			return nil, err
		}

		ret = append(ret, sortColumn)
	}

	return ret, nil
}

// splitQualified splits "table.column" into its parts, stripping identifier
// quoting. An unqualified column returns an empty qualifier and is treated as
// belonging to the paginated table.
func splitQualified(token string) (qualifier, name string) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) == 2 {
		return trimIdentifier(parts[0]), trimIdentifier(parts[1])
	}

	return "", trimIdentifier(parts[0])
}

func trimIdentifier(s string) string {
	return strings.Trim(s, "`'\"")
}
