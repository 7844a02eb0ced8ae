package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rmamani/finanzas-go/internal/domain"
)

// querier is the subset of database/sql satisfied by both *sql.DB and
// *sql.Tx, so collections run unchanged inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// index declares a secondary index on a collection: the column it lives in
// and how to extract its value from a record. A nil value is stored as NULL
// and matched with IS NULL on lookup.
type index[T any] struct {
	column string
	value  func(*T) any
}

// spec describes how one collection maps onto its table: every record is
// stored whole as a JSON document plus extracted columns for the primary key
// and each secondary index. This mirrors an object store keyed by id with
// named indexes, which is exactly the access pattern the repositories need.
type colSpec[T any] struct {
	table   string
	key     func(*T) string
	indexes []index[T]
}

// collection provides uniform CRUD and index lookups over one table.
// Each exported method is a single statement or a single transaction.
type collection[T any] struct {
	db   *sql.DB // nil when bound to an enclosing transaction
	q    querier
	spec colSpec[T]
}

func newCollection[T any](db *sql.DB, spec colSpec[T]) *collection[T] {
	return &collection[T]{db: db, q: db, spec: spec}
}

// bind returns a view of the collection running on tx. Batch operations on a
// bound collection join that transaction instead of opening their own.
func (c *collection[T]) bind(tx *sql.Tx) *collection[T] {
	return &collection[T]{q: tx, spec: c.spec}
}

// createSQL returns the DDL for the collection's table and indexes.
func (s colSpec[T]) createSQL() []string {
	cols := []string{"id TEXT PRIMARY KEY", "doc TEXT NOT NULL"}
	stmts := []string{}
	for _, ix := range s.indexes {
		cols = append(cols, ix.column+" TEXT")
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)",
			s.table, ix.column, s.table, ix.column))
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.table, strings.Join(cols, ", "))
	return append([]string{create}, stmts...)
}

func (c *collection[T]) row(record *T) (id string, doc string, idxVals []any, err error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return "", "", nil, &domain.ErrStorage{Op: c.spec.table + ".encode", Err: err}
	}
	idxVals = make([]any, 0, len(c.spec.indexes))
	for _, ix := range c.spec.indexes {
		idxVals = append(idxVals, ix.value(record))
	}
	return c.spec.key(record), string(raw), idxVals, nil
}

func (c *collection[T]) insertSQL(upsert bool) string {
	verb := "INSERT"
	if upsert {
		verb = "INSERT OR REPLACE"
	}
	cols := []string{"id", "doc"}
	marks := []string{"?", "?"}
	for _, ix := range c.spec.indexes {
		cols = append(cols, ix.column)
		marks = append(marks, "?")
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)",
		verb, c.spec.table, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func (c *collection[T]) decode(raw string) (*T, error) {
	var record T
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, &domain.ErrStorage{Op: c.spec.table + ".decode", Err: err}
	}
	return &record, nil
}

// Add inserts a record, failing with ErrDuplicateKey if the key exists.
func (c *collection[T]) Add(ctx context.Context, record *T) error {
	id, doc, idxVals, err := c.row(record)
	if err != nil {
		return err
	}
	args := append([]any{id, doc}, idxVals...)
	if _, err := c.q.ExecContext(ctx, c.insertSQL(false), args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &domain.ErrDuplicateKey{Collection: c.spec.table, Key: id}
		}
		return &domain.ErrStorage{Op: c.spec.table + ".add", Err: err}
	}
	return nil
}

// Update upserts a record by primary key.
func (c *collection[T]) Update(ctx context.Context, record *T) error {
	id, doc, idxVals, err := c.row(record)
	if err != nil {
		return err
	}
	args := append([]any{id, doc}, idxVals...)
	if _, err := c.q.ExecContext(ctx, c.insertSQL(true), args...); err != nil {
		return &domain.ErrStorage{Op: c.spec.table + ".update", Err: err}
	}
	return nil
}

// UpdateMany upserts a batch in one transaction. Empty input is a no-op.
func (c *collection[T]) UpdateMany(ctx context.Context, records []T) error {
	if len(records) == 0 {
		return nil
	}
	return c.inTx(ctx, func(b *collection[T]) error {
		for i := range records {
			if err := b.Update(ctx, &records[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID fetches one record; domain.ErrNotFound is the absent sentinel.
func (c *collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var raw string
	err := c.q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT doc FROM %s WHERE id = ?", c.spec.table), id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: c.spec.table, ID: id}
	}
	if err != nil {
		return nil, &domain.ErrStorage{Op: c.spec.table + ".get", Err: err}
	}
	return c.decode(raw)
}

// GetAll returns every record. Order is unspecified; callers sort.
func (c *collection[T]) GetAll(ctx context.Context) ([]T, error) {
	return c.selectDocs(ctx, fmt.Sprintf("SELECT doc FROM %s", c.spec.table))
}

// GetByIndex returns records whose indexed column equals value. A nil value
// matches NULL. No match returns an empty slice, never an error.
func (c *collection[T]) GetByIndex(ctx context.Context, column string, value any) ([]T, error) {
	if value == nil {
		return c.selectDocs(ctx,
			fmt.Sprintf("SELECT doc FROM %s WHERE %s IS NULL", c.spec.table, column))
	}
	return c.selectDocs(ctx,
		fmt.Sprintf("SELECT doc FROM %s WHERE %s = ?", c.spec.table, column), value)
}

// GetByIndexRange returns records whose indexed column lies in the inclusive
// [lower, upper] range.
func (c *collection[T]) GetByIndexRange(ctx context.Context, column string, lower, upper any) ([]T, error) {
	return c.selectDocs(ctx,
		fmt.Sprintf("SELECT doc FROM %s WHERE %s >= ? AND %s <= ?", c.spec.table, column, column),
		lower, upper)
}

func (c *collection[T]) selectDocs(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.ErrStorage{Op: c.spec.table + ".query", Err: err}
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, &domain.ErrStorage{Op: c.spec.table + ".scan", Err: err}
		}
		record, err := c.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrStorage{Op: c.spec.table + ".iterate", Err: err}
	}
	return out, nil
}

// Delete removes one record. Deleting an absent id is not an error.
func (c *collection[T]) Delete(ctx context.Context, id string) error {
	if _, err := c.q.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.spec.table), id); err != nil {
		return &domain.ErrStorage{Op: c.spec.table + ".delete", Err: err}
	}
	return nil
}

// DeleteMany removes records one statement per id inside one transaction.
// An empty id list resolves successfully without I/O.
func (c *collection[T]) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.inTx(ctx, func(b *collection[T]) error {
		for _, id := range ids {
			if err := b.Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes all records in the collection.
func (c *collection[T]) Clear(ctx context.Context) error {
	if _, err := c.q.ExecContext(ctx, "DELETE FROM "+c.spec.table); err != nil {
		return &domain.ErrStorage{Op: c.spec.table + ".clear", Err: err}
	}
	return nil
}

// Count returns the number of records.
func (c *collection[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.spec.table).Scan(&n); err != nil {
		return 0, &domain.ErrStorage{Op: c.spec.table + ".count", Err: err}
	}
	return n, nil
}

// inTx runs fn with a transaction-bound view of the collection. When the
// collection is already bound to an enclosing transaction it joins it.
func (c *collection[T]) inTx(ctx context.Context, fn func(*collection[T]) error) error {
	if c.db == nil {
		return fn(c)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.ErrStorage{Op: c.spec.table + ".begin", Err: err}
	}
	if err := fn(c.bind(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return &domain.ErrStorage{Op: c.spec.table + ".commit", Err: err}
	}
	return nil
}
