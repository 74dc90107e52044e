package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"
)

// Errors returned by Query before anything is sent to the database.
var (
	ErrUnknownTable  = errors.New("table is not mapped")
	ErrUnknownColumn = errors.New("column is not a field of the mapped type")
)

// A Filter keeps the rows whose column equals Value.
type Filter struct {
	Column string
	Value  any
}

// Eq creates a Filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// An Order sorts rows by one column.
type Order struct {
	Column     string
	Descending bool
}

// Asc sorts by column, smallest first.
func Asc(column string) Order {
	return Order{Column: column}
}

// Desc sorts by column, largest first.
func Desc(column string) Order {
	return Order{Column: column, Descending: true}
}

// QueryParams selects, sorts and pages the rows of one table. Filters are
// combined with AND. A Limit of 0 returns every row.
type QueryParams struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
	Offset  int
}

// DataReader reads back the tables written by a DataRecorder.
type DataReader interface {
	// MapTable tells the reader which struct the rows of a table are read
	// into. Columns are the exported fields of the struct.
	MapTable(tableName string, sampleEntry any)

	// Query returns pointers to entries of the mapped type, together with
	// the number of rows that pass the filters before paging.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the underlying database.
	Close() error
}

type tableMapping struct {
	entryType reflect.Type
	columns   []string
	fields    map[string][]int
}

func newTableMapping(sampleEntry any) *tableMapping {
	v := reflect.Indirect(reflect.ValueOf(sampleEntry))
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("cannot map table to %T, a struct is required",
			sampleEntry))
	}

	m := &tableMapping{
		entryType: v.Type(),
		columns:   structs.Names(v.Interface()),
		fields:    make(map[string][]int),
	}

	for _, c := range m.columns {
		f, _ := m.entryType.FieldByName(c)
		m.fields[c] = f.Index
	}

	return m
}

func (m *tableMapping) mustHaveColumn(column string) error {
	if _, ok := m.fields[column]; !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, m.entryType.Name(), column)
	}

	return nil
}

type sqliteReader struct {
	db *sql.DB

	lock   sync.RWMutex
	tables map[string]*tableMapping
}

// NewReader opens a database file written by a DataRecorder.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbFilename, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", dbFilename, err)
	}

	return &sqliteReader{
		db:     db,
		tables: make(map[string]*tableMapping),
	}, nil
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	m := newTableMapping(sampleEntry)

	r.lock.Lock()
	r.tables[tableName] = m
	r.lock.Unlock()
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	r.lock.RLock()
	m, ok := r.tables[tableName]
	r.lock.RUnlock()

	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownTable, tableName)
	}

	where, args, err := whereClause(m, params.Filters)
	if err != nil {
		return nil, 0, err
	}

	var total int

	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+tableName+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", tableName, err)
	}

	stmt, err := selectStatement(m, tableName, where, params)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", tableName, err)
	}
	defer rows.Close()

	var results []any

	for rows.Next() {
		entry := reflect.New(m.entryType)
		targets := make([]any, len(m.columns))

		for i, c := range m.columns {
			targets[i] = entry.Elem().FieldByIndex(m.fields[c]).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", tableName, err)
		}

		results = append(results, entry.Interface())
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", tableName, err)
	}

	return results, total, nil
}

func whereClause(m *tableMapping, filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	conditions := make([]string, len(filters))
	args := make([]any, len(filters))

	for i, f := range filters {
		if err := m.mustHaveColumn(f.Column); err != nil {
			return "", nil, err
		}

		conditions[i] = f.Column + " = ?"
		args[i] = f.Value
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func selectStatement(
	m *tableMapping,
	tableName, where string,
	params QueryParams,
) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "SELECT %s FROM %s%s",
		strings.Join(m.columns, ", "), tableName, where)

	for i, o := range params.OrderBy {
		if err := m.mustHaveColumn(o.Column); err != nil {
			return "", err
		}

		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}

		b.WriteString(o.Column)

		if o.Descending {
			b.WriteString(" DESC")
		}
	}

	if params.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", params.Limit, params.Offset)
	}

	return b.String(), nil
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}
