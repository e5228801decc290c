package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/formscore/internal/logger"
	_ "modernc.org/sqlite"
)

// Persistable is a struct whose tagged fields map onto a table.
//
// Fields are persisted when they carry a dbtype tag. The column tag names the column
// (defaulting to the lower cased field name), primary:"true" adds the column to the
// primary key and index:"true" creates an index on it.
type Persistable interface {
	TableName() string
	PrimaryKey() map[string]any
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// column is one persisted field of a struct value
type column struct {
	name    string
	dbtype  string
	primary bool
	index   bool
	value   reflect.Value
}

// columns reflects over the tagged fields of obj, which must be a struct or a pointer to one
func columns(obj any) []column {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var cols []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Tag.Get("db") == "-" {
			continue
		}
		dbtype := field.Tag.Get("dbtype")
		if dbtype == "" {
			continue
		}
		name := field.Tag.Get("column")
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		cols = append(cols, column{
			name:    name,
			dbtype:  dbtype,
			primary: field.Tag.Get("primary") == "true",
			index:   field.Tag.Get("index") == "true",
			value:   v.Field(i),
		})
	}
	return cols
}

// generateCreateTableSQL builds CREATE TABLE from the struct tags, with a compound primary key when
// more than one field is marked primary
func generateCreateTableSQL(obj Persistable) string {
	var defs, keys []string
	for _, c := range columns(obj) {
		defs = append(defs, fmt.Sprintf("%s %s", c.name, c.dbtype))
		if c.primary {
			keys = append(keys, c.name)
		}
	}
	if len(keys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", obj.TableName(), strings.Join(defs, ", "))
}

func generateIndexSQL(obj Persistable) []string {
	var out []string
	table := obj.TableName()
	for _, c := range columns(obj) {
		if c.index {
			out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", table, c.name, table, c.name))
		}
	}
	return out
}

// buildWhereClause turns a primary key map into a WHERE clause. Columns are taken in the
// order the struct declares them so the generated SQL is stable.
func buildWhereClause(obj Persistable) (string, []any) {
	key := obj.PrimaryKey()
	var conds []string
	var values []any
	for _, c := range columns(obj) {
		if v, ok := key[c.name]; ok {
			conds = append(conds, c.name+" = ?")
			values = append(values, v)
		}
	}
	return strings.Join(conds, " AND "), values
}

/////////////////////////////////////////////////////////////////////////
////// Table operations
/////////////////////////////////////////////////////////////////////////

// CreateTable creates the table and indexes for obj if they do not exist
func (s *Store) CreateTable(ctx context.Context, obj Persistable) error {
	query := generateCreateTableSQL(obj)
	logger.Debug("Creating table with SQL", query)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", obj.TableName(), err)
	}
	for _, q := range generateIndexSQL(obj) {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			logger.Warn("Failed to create index", q, err)
		}
	}
	return nil
}

// Save inserts obj, or updates it when a row with the same primary key exists
func (s *Store) Save(ctx context.Context, obj Persistable) error {
	return save(ctx, s.db, obj)
}

// BulkSave saves every object in a single transaction
func (s *Store) BulkSave(ctx context.Context, objs []Persistable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obj := range objs {
		if err := save(ctx, tx, obj); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Exists reports whether a row with obj's primary key is present
func (s *Store) Exists(ctx context.Context, obj Persistable) (bool, error) {
	return exists(ctx, s.db, obj)
}

// Delete removes the row with obj's primary key
func (s *Store) Delete(ctx context.Context, obj Persistable) error {
	where, values := buildWhereClause(obj)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", obj.TableName(), where)
	if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", obj.TableName(), err)
	}
	return nil
}

func save(ctx context.Context, d execer, obj Persistable) error {
	found, err := exists(ctx, d, obj)
	if err != nil {
		return err
	}
	if found {
		return update(ctx, d, obj)
	}
	return insert(ctx, d, obj)
}

func exists(ctx context.Context, d execer, obj Persistable) (bool, error) {
	where, values := buildWhereClause(obj)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", obj.TableName(), where)
	var count int
	if err := d.QueryRowContext(ctx, query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", obj.TableName(), err)
	}
	return count > 0, nil
}

func insert(ctx context.Context, d execer, obj Persistable) error {
	var names, marks []string
	var values []any
	for _, c := range columns(obj) {
		names = append(names, c.name)
		marks = append(marks, "?")
		values = append(values, c.value.Interface())
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", obj.TableName(), strings.Join(names, ", "), strings.Join(marks, ", "))
	if _, err := d.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", obj.TableName(), err)
	}
	return nil
}

func update(ctx context.Context, d execer, obj Persistable) error {
	var pairs []string
	var values []any
	for _, c := range columns(obj) {
		if c.primary {
			continue
		}
		pairs = append(pairs, c.name+" = ?")
		values = append(values, c.value.Interface())
	}
	if len(pairs) == 0 {
		return nil
	}
	where, keys := buildWhereClause(obj)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", obj.TableName(), strings.Join(pairs, ", "), where)
	if _, err := d.ExecContext(ctx, query, append(values, keys...)...); err != nil {
		return fmt.Errorf("failed to update %s: %w", obj.TableName(), err)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Queries
/////////////////////////////////////////////////////////////////////////

// ErrNotFound is returned by FindByPrimaryKey when no row matches
var ErrNotFound = errors.New("record not found")

// FindByPrimaryKey fills obj from the row matching its primary key
func (s *Store) FindByPrimaryKey(ctx context.Context, obj Persistable) error {
	cols := columns(obj)
	names := make([]string, len(cols))
	dest := make([]any, len(cols))
	for i, c := range cols {
		names[i] = c.name
		dest[i] = c.value.Addr().Interface()
	}
	where, values := buildWhereClause(obj)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(names, ", "), obj.TableName(), where)

	err := s.db.QueryRowContext(ctx, query, values...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", obj.TableName(), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to scan row from %s: %w", obj.TableName(), err)
	}
	return nil
}

// FindWhere returns every row of T's table matching where, which may be empty.
// where is appended verbatim so may also carry an ORDER BY.
func FindWhere[T any, PT interface {
	*T
	Persistable
}](ctx context.Context, s *Store, where string, args ...any) ([]*T, error) {
	var probe T
	cols := columns(&probe)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}

	table := PT(&probe).TableName()
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), table)
	if strings.TrimSpace(where) != "" {
		query += " WHERE " + where
	}
	logger.Debug("FindWhere SQL", query)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		item := new(T)
		cols := columns(item)
		dest := make([]any, len(cols))
		for i, c := range cols {
			dest[i] = c.value.Addr().Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", table, err)
	}
	return out, nil
}
