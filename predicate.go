package cursorpage

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

type (
	// condition is a single comparison Operator(Column, Value), rendered as
	// "Column Operator ?".
	condition struct {
		Column   string
		Value    any
		Operator Operator
	}

	// conditionGroup is a conjunction: all of its conditions joined by AND.
	conditionGroup []condition

	// keysetPredicate is the disjunctive normal form of a keyset comparison:
	// groups joined by OR, conditions within a group joined by AND.
	//
	// For sort columns (C1..Cn) and boundary values (V1..Vn) it holds one
	// group per position i, each group being
	//
	//	C1 = V1 AND ... AND C(i-1) = V(i-1) AND Ci <op> Vi
	//
	// which together express "lexicographically beyond the boundary tuple".
	// A single inequality on C1 cannot express this once tie-breaking columns
	// exist. Group order follows column precedence.
	keysetPredicate []conditionGroup
)

// buildKeysetPredicate translates a cursor and the normalized sort columns
// into the WHERE predicate selecting rows strictly beyond the boundary.
//
// The comparison for position i starts from the column's own direction
// (ASC selects with ">", DESC with "<") and is flipped when the cursor is a
// before-cursor. Columns are emitted qualified with the paginated table so
// the predicate stays unambiguous under joins.
//
// Fails with ErrCursorSortMismatch when the cursor's value count differs from
// the sort-column count. A nil cursor produces an empty predicate.
func buildKeysetPredicate(cur *Cursor, sort SortColumns, table string) (keysetPredicate, error) {
	if cur == nil {
		return nil, nil
	}

	if len(cur.Values) != len(sort) {
		return nil, fmt.Errorf("%w: cursor has %d values, query sorts by %d columns",
			ErrCursorSortMismatch, len(cur.Values), len(sort))
	}

	ret := make(keysetPredicate, 0, len(sort))
	for i, sortColumn := range sort {
		operator := sortColumn.Direction.ForOperator()
		if cur.Type == CursorBefore {
			operator = operator.Flip()
		}

		prefix := lo.Map(sort[:i], func(prior SortColumn, j int) condition {
			return condition{
				Column:   qualifyColumn(table, prior.Name),
				Value:    cur.Values[j],
				Operator: operatorEq,
			}
		})

		group := make(conditionGroup, 0, len(prefix)+1)
		group = append(group, prefix...)
		group = append(group, condition{
			Column:   qualifyColumn(table, sortColumn.Name),
			Value:    cur.Values[i],
			Operator: operator,
		})

		ret = append(ret, group)
	}

	return ret, nil
}

func qualifyColumn(table, name string) string {
	if table == "" {
		return name
	}

	return fmt.Sprintf("%s.%s", table, name)
}

// toGORMExpression converts the condition into a clause.Expression of the
// form "Column Operator ?" with a bound placeholder value.
func (c condition) toGORMExpression() clause.Expression {
	sqlClause, arg := c.toSQLClause()

	return clause.Expr{
		SQL:  sqlClause,
		Vars: []any{arg},
	}
}

// toSQLClause renders the condition as "Column Operator ?" and returns the
// placeholder value.
func (c condition) toSQLClause() (string, driver.Value) {
	return fmt.Sprintf("%s %s ?", c.Column, c.Operator), parseAnyValue(c.Value)
}

// parseAnyValue tries to interpret string-ish values as time.Time so that
// RFC 3339 cursor values decoded from JSON compare correctly against
// timestamp columns. Anything else passes through unchanged.
func parseAnyValue(v any) any {
	fnParseBytesToTimeOrValue := func(vBytes []byte) any {
		dst := time.Time{}
		if err := dst.UnmarshalText(vBytes); err == nil {
			return dst
		}

		return v
	}

	switch vt := v.(type) {
	case string:
		return fnParseBytesToTimeOrValue([]byte(vt))
	case []byte:
		return fnParseBytesToTimeOrValue(vt)
	default:
		return v
	}
}

// toGORMExpression joins the group's conditions with AND.
func (g conditionGroup) toGORMExpression() clause.Expression {
	andExpressions := make([]clause.Expression, 0, len(g))
	for _, cond := range g {
		andExpressions = append(andExpressions, cond.toGORMExpression())
	}

	if len(andExpressions) == 1 {
		return andExpressions[0]
	} else if len(andExpressions) > 1 {
		return clause.And(andExpressions...)
	}

	return nil
}

// toSQLClause renders the group as "(K1 AND K2 ...)" with placeholder values.
func (g conditionGroup) toSQLClause() (string, []driver.Value) {
	andClauses := make([]string, 0, len(g))
	andValues := make([]driver.Value, 0, len(g))

	for _, cond := range g {
		andClause, andValue := cond.toSQLClause()
		andClauses = append(andClauses, andClause)
		andValues = append(andValues, andValue)
	}

	if len(andClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(andClauses, " AND ")), andValues
	}

	return "", nil
}

// toGORMExpression joins the predicate's groups with OR. Returns nil for an
// empty predicate (first page, natural ordering only).
func (p keysetPredicate) toGORMExpression() clause.Expression {
	orExpressions := make([]clause.Expression, 0, len(p))

	for _, group := range p {
		andExpression := group.toGORMExpression()
		if andExpression == nil {
			continue
		}

		orExpressions = append(orExpressions, andExpression)
	}

	if len(orExpressions) == 1 {
		return orExpressions[0]
	} else if len(orExpressions) > 1 {
		return clause.Or(orExpressions...)
	}

	return nil
}

// toSQL renders the predicate as an SQL condition with placeholder values.
// An empty predicate renders as "TRUE".
func (p keysetPredicate) toSQL() (string, []driver.Value) {
	orClauses := make([]string, 0, len(p))
	values := make([]driver.Value, 0, len(p))

	for _, group := range p {
		orClause, orValues := group.toSQLClause()
		if orClause == "" {
			continue
		}

		orClauses = append(orClauses, orClause)
		values = append(values, orValues...)
	}

	if len(orClauses) >= 1 {
		return fmt.Sprintf("(%s)", strings.Join(orClauses, " OR ")), values
	}

	return "TRUE", nil
}
