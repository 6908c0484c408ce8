package cursorpage

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Options controls a single pagination request. The struct is JSON-friendly
// so it can be inlined into API payloads:
//
//	type ListBooksRequest struct {
//	    cursorpage.Options `json:",inline"`
//	    TitleFilter string `json:"titleFilter"`
//	}
type Options struct {
	// Limit is the maximum number of records per page. Coerced leniently:
	// anything that does not parse to a positive integer silently becomes
	// DefaultLimit.
	Limit any `json:"limit,omitempty"`
	// After holds the forward cursor values, usually a previous page's
	// Pagination.Cursors.After. Mutually exclusive with Before.
	After any `json:"after,omitempty"`
	// Before holds the backward cursor values. Mutually exclusive with After.
	Before any `json:"before,omitempty"`
	// Scope is forwarded verbatim to the row-fetch step, after ordering,
	// predicate and limit are applied. Use it for preloads, selects and other
	// fetch-only concerns; it does not affect the row count.
	Scope func(*gorm.DB) *gorm.DB `json:"-"`
	// ReadValue overrides how sort-column values are read off fetched records
	// when deriving page cursors. Defaults to the model's parsed schema.
	ReadValue ValueReader `json:"-"`
}

// source is the explicit pagination context both entry points build: the base
// query plus the identity of the table being paginated.
type source struct {
	query    *gorm.DB
	model    any
	table    string
	idColumn string
	read     ValueReader
}

var _schemaCache sync.Map

// FetchPage paginates the table mapped by T, scoped by whatever conditions
// and ordering the caller already put on db. Without an explicit ORDER BY the
// page is sorted by the primary key ascending.
//
//	page, err := cursorpage.FetchPage[Book](ctx, db.Where("author = ?", a), cursorpage.Options{Limit: 20})
//	...
//	next, err := cursorpage.FetchPage[Book](ctx, db.Where("author = ?", a), cursorpage.Options{
//	    Limit: 20,
//	    After: page.Pagination.Cursors.After,
//	})
func FetchPage[T any](ctx context.Context, db *gorm.DB, opts Options) (*Page[T], error) {
	src, err := resolveSource[T](ctx, db, opts)
	if err != nil {
		return nil, err
	}

	return fetchPage[T](ctx, src, opts)
}

// FetchAssociatedPage paginates a "has many" (or "has one") collection
// naturally scoped to owner, e.g. the Books of one Author. The foreign-key
// conditions are derived from the owner schema's relationship references;
// other association kinds are rejected because their sort columns would live
// on a secondary table.
func FetchAssociatedPage[T any](ctx context.Context, db *gorm.DB, owner any, association string, opts Options) (*Page[T], error) {
	src, err := resolveSource[T](ctx, db, opts)
	if err != nil {
		return nil, err
	}

	ownerSchema, err := schema.Parse(owner, &_schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve schema for %T: %w", owner, err)
	}

	rel, ok := ownerSchema.Relationships.Relations[association]
	if !ok {
		return nil, fmt.Errorf("unknown association '%s' on %s", association, ownerSchema.Name)
	}
	if rel.Type != schema.HasMany && rel.Type != schema.HasOne {
		return nil, fmt.Errorf("cannot paginate '%s' association '%s' on %s", rel.Type, association, ownerSchema.Name)
	}
	if rel.FieldSchema == nil || rel.FieldSchema.Table != src.table {
		return nil, fmt.Errorf("association '%s' on %s does not target table '%s'", association, ownerSchema.Name, src.table)
	}

	ownerValue := reflect.ValueOf(owner)
	tx := src.query
	for _, ref := range rel.References {
		if ref.ForeignKey == nil {
			continue
		}

		// Polymorphic references scope by a constant type value.
		if ref.PrimaryValue != "" {
			tx = tx.Where(fmt.Sprintf("%s = ?", qualifyColumn(src.table, ref.ForeignKey.DBName)), ref.PrimaryValue)
			continue
		}

		if ref.PrimaryKey == nil {
			continue
		}

		value, isZero := ref.PrimaryKey.ValueOf(ctx, ownerValue)
		if isZero {
			return nil, fmt.Errorf("cannot scope association '%s': %s.%s is zero",
				association, ownerSchema.Name, ref.PrimaryKey.Name)
		}

		tx = tx.Where(fmt.Sprintf("%s = ?", qualifyColumn(src.table, ref.ForeignKey.DBName)), value)
	}

	src.query = tx

	return fetchPage[T](ctx, src, opts)
}

// fetchPage is the single core both entry points feed. All validation runs
// before any SQL is issued; the page fetch and the row count then execute
// concurrently on independent clones of the base query.
func fetchPage[T any](ctx context.Context, src source, opts Options) (*Page[T], error) {
	limit := NormalizeLimit(opts.Limit)

	cursor, err := parseCursorInput(opts.After, opts.Before)
	if err != nil {
		return nil, err
	}

	sort, synthesized, err := normalizeSort(src.query.Statement, src.table, src.idColumn)
	if err != nil {
		return nil, err
	}

	predicate, err := buildKeysetPredicate(cursor, sort, src.table)
	if err != nil {
		return nil, err
	}

	// A backward page is the limit rows immediately preceding the boundary,
	// which are the FIRST limit rows beyond it under the inverted ordering.
	// The fetch runs reversed and the rows are flipped back afterwards, so
	// the page and its cursors always read in the original sort order.
	backward := cursor != nil && cursor.Type == CursorBefore

	var (
		rows     []T
		cursors  Cursors
		rowCount int64
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		tx := cloneQuery(groupCtx, src.query).Model(src.model)
		switch {
		case backward:
			delete(tx.Statement.Clauses, "ORDER BY")
			for _, sortColumn := range sort.Reversed() {
				tx = tx.Order(clause.OrderByColumn{
					Column: clause.Column{Table: src.table, Name: sortColumn.Name},
					Desc:   sortColumn.Direction == DirectionDESC,
				})
			}
		case synthesized:
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Table: src.table, Name: src.idColumn}})
		}
		if expression := predicate.toGORMExpression(); expression != nil {
			tx = tx.Clauses(expression)
		}
		tx = tx.Limit(limit)

		if opts.Scope != nil {
			tx = opts.Scope(tx)
		}

		if err := tx.Find(&rows).Error; err != nil {
			return err
		}

		if backward {
			lo.Reverse(rows)
		}

		pageBounds, err := pageCursors(rows, sort, src.read)
		if err != nil {
			return err
		}

		cursors = pageBounds
		return nil
	})
	group.Go(func() error {
		var err error
		rowCount, err = countRows(groupCtx, src)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &Page[T]{
		Rows: rows,
		Pagination: Pagination{
			RowCount:  rowCount,
			Limit:     limit,
			PageCount: pageCount(rowCount, limit),
			Cursors:   cursors,
		},
	}, nil
}

// resolveSource derives the pagination context from the model type: table
// name and identity column from the parsed schema, identity defaulting to
// "id" when the model declares no primary key.
func resolveSource[T any](ctx context.Context, db *gorm.DB, opts Options) (source, error) {
	model := new(T)

	sch, err := schema.Parse(model, &_schemaCache, db.NamingStrategy)
	if err != nil {
		return source{}, fmt.Errorf("cannot resolve schema for %T: %w", model, err)
	}

	idColumn := "id"
	if sch.PrioritizedPrimaryField != nil {
		idColumn = sch.PrioritizedPrimaryField.DBName
	}

	read := opts.ReadValue
	if read == nil {
		read = schemaValueReader(ctx, sch)
	}

	return source{
		query:    db,
		model:    model,
		table:    sch.Table,
		idColumn: idColumn,
		read:     read,
	}, nil
}

// schemaValueReader reads record attributes through the parsed schema,
// matching sort-column names against field database names.
func schemaValueReader(ctx context.Context, sch *schema.Schema) ValueReader {
	return func(record any, column string) (any, error) {
		field := sch.LookUpField(column)
		if field == nil {
			return nil, fmt.Errorf("sort column '%s' has no matching attribute on %s", column, sch.Name)
		}

		value, _ := field.ValueOf(ctx, reflect.ValueOf(record))
		return value, nil
	}
}
