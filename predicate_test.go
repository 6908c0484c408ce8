package cursorpage

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildKeysetPredicate(t *testing.T) {
	tests := []struct {
		name     string
		cursor   *Cursor
		sort     SortColumns
		wantSQL  string
		wantArgs []driver.Value
		wantErr  error
	}{
		{
			name:    "nil cursor builds no predicate",
			cursor:  nil,
			sort:    SortColumns{{Name: "id", Direction: DirectionASC}},
			wantSQL: "TRUE",
		},
		{
			name:     "after on ascending column selects greater",
			cursor:   &Cursor{Type: CursorAfter, Values: []any{5}},
			sort:     SortColumns{{Name: "id", Direction: DirectionASC}},
			wantSQL:  "((users.id > ?))",
			wantArgs: []driver.Value{5},
		},
		{
			name:     "after on descending column selects less",
			cursor:   &Cursor{Type: CursorAfter, Values: []any{5}},
			sort:     SortColumns{{Name: "id", Direction: DirectionDESC}},
			wantSQL:  "((users.id < ?))",
			wantArgs: []driver.Value{5},
		},
		{
			name:     "before on ascending column selects less",
			cursor:   &Cursor{Type: CursorBefore, Values: []any{5}},
			sort:     SortColumns{{Name: "id", Direction: DirectionASC}},
			wantSQL:  "((users.id < ?))",
			wantArgs: []driver.Value{5},
		},
		{
			name:     "before on descending column flips twice and selects greater",
			cursor:   &Cursor{Type: CursorBefore, Values: []any{5}},
			sort:     SortColumns{{Name: "id", Direction: DirectionDESC}},
			wantSQL:  "((users.id > ?))",
			wantArgs: []driver.Value{5},
		},
		{
			name:   "two columns tie-break with equality prefix",
			cursor: &Cursor{Type: CursorAfter, Values: []any{"bob", 7}},
			sort: SortColumns{
				{Name: "name", Direction: DirectionASC},
				{Name: "id", Direction: DirectionDESC},
			},
			wantSQL:  "((users.name > ?) OR (users.name = ? AND users.id < ?))",
			wantArgs: []driver.Value{"bob", "bob", 7},
		},
		{
			name:   "before flips every strict comparison but not the equality prefix",
			cursor: &Cursor{Type: CursorBefore, Values: []any{"bob", 7}},
			sort: SortColumns{
				{Name: "name", Direction: DirectionASC},
				{Name: "id", Direction: DirectionDESC},
			},
			wantSQL:  "((users.name < ?) OR (users.name = ? AND users.id > ?))",
			wantArgs: []driver.Value{"bob", "bob", 7},
		},
		{
			name:   "three columns emit one disjunct per position",
			cursor: &Cursor{Type: CursorAfter, Values: []any{1, 2, 3}},
			sort: SortColumns{
				{Name: "a", Direction: DirectionASC},
				{Name: "b", Direction: DirectionASC},
				{Name: "c", Direction: DirectionASC},
			},
			wantSQL:  "((users.a > ?) OR (users.a = ? AND users.b > ?) OR (users.a = ? AND users.b = ? AND users.c > ?))",
			wantArgs: []driver.Value{1, 1, 2, 1, 2, 3},
		},
		{
			name:    "value count must match sort column count",
			cursor:  &Cursor{Type: CursorAfter, Values: []any{1}},
			sort:    SortColumns{{Name: "a", Direction: DirectionASC}, {Name: "b", Direction: DirectionASC}},
			wantErr: ErrCursorSortMismatch,
		},
		{
			name:    "empty cursor values against active sort mismatch",
			cursor:  &Cursor{Type: CursorAfter, Values: []any{}},
			sort:    SortColumns{{Name: "id", Direction: DirectionASC}},
			wantErr: ErrCursorSortMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predicate, err := buildKeysetPredicate(tt.cursor, tt.sort, "users")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			gotSQL, gotArgs := predicate.toSQL()
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Equal(t, tt.wantArgs, gotArgs)
		})
	}
}

func Test_parseAnyValue(t *testing.T) {
	wantTime := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"rfc3339 string becomes time", "2023-01-02T03:04:05Z", wantTime},
		{"rfc3339 bytes become time", []byte("2023-01-02T03:04:05Z"), wantTime},
		{"plain string passes through", "bob", "bob"},
		{"int passes through", 42, 42},
		{"nil passes through", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAnyValue(tt.in)
			if wt, ok := tt.want.(time.Time); ok {
				require.IsType(t, time.Time{}, got)
				assert.True(t, wt.Equal(got.(time.Time)))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
