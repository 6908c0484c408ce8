package cursorpage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseCursorInput(t *testing.T) {
	tests := []struct {
		name    string
		after   any
		before  any
		want    *Cursor
		wantErr bool
	}{
		{
			name: "no bounds means first page",
		},
		{
			name:  "after builds a forward cursor",
			after: []any{5, "bob"},
			want:  &Cursor{Type: CursorAfter, Values: []any{5, "bob"}},
		},
		{
			name:   "before builds a backward cursor",
			before: []string{"bob"},
			want:   &Cursor{Type: CursorBefore, Values: []any{"bob"}},
		},
		{
			name:  "typed slices are accepted",
			after: []int{1, 2},
			want:  &Cursor{Type: CursorAfter, Values: []any{1, 2}},
		},
		{
			name:  "typed nil slice means absent",
			after: []int(nil),
		},
		{
			name:    "both bounds are mutually exclusive",
			after:   []any{1},
			before:  []any{2},
			wantErr: true,
		},
		{
			name:    "after must be a sequence",
			after:   "5",
			wantErr: true,
		},
		{
			name:    "before must be a sequence",
			before:  42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCursorInput(tt.after, tt.before)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCursorInput)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_pageCursors(t *testing.T) {
	type tBook struct {
		ID    uint
		Title string
	}

	sort := SortColumns{
		{Name: "title", Direction: DirectionASC},
		{Name: "id", Direction: DirectionASC},
	}

	read := func(record any, column string) (any, error) {
		book := record.(tBook)
		switch column {
		case "id":
			return book.ID, nil
		case "title":
			return book.Title, nil
		default:
			return nil, fmt.Errorf("unknown column '%s'", column)
		}
	}

	t.Run("boundaries come from the first and last row", func(t *testing.T) {
		rows := []tBook{
			{ID: 3, Title: "axiom"},
			{ID: 1, Title: "brick"},
			{ID: 7, Title: "cove"},
		}

		got, err := pageCursors(rows, sort, read)
		require.NoError(t, err)
		assert.Equal(t, []any{"axiom", uint(3)}, got.Before)
		assert.Equal(t, []any{"cove", uint(7)}, got.After)
	})

	t.Run("single row is both boundaries", func(t *testing.T) {
		got, err := pageCursors([]tBook{{ID: 9, Title: "solo"}}, sort, read)
		require.NoError(t, err)
		assert.Equal(t, []any{"solo", uint(9)}, got.Before)
		assert.Equal(t, []any{"solo", uint(9)}, got.After)
	})

	t.Run("empty page has no cursors", func(t *testing.T) {
		got, err := pageCursors[tBook](nil, sort, read)
		require.NoError(t, err)
		assert.Nil(t, got.Before)
		assert.Nil(t, got.After)
	})

	t.Run("unreadable sort column surfaces the reader error", func(t *testing.T) {
		badSort := SortColumns{{Name: "missing", Direction: DirectionASC}}

		_, err := pageCursors([]tBook{{ID: 1}}, badSort, read)
		require.Error(t, err)
	})
}
