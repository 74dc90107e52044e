// Package datarecording stores flat records in SQLite databases and reads
// them back.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data. It is safe for
// concurrent use.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of the sample
	// entry. Creating a table again with the same entry type is a no-op.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all the tables, sorted.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

// NewDataRecorder creates a DataRecorder that writes into path.sqlite3. If
// path is empty, a unique name is generated. The file must not exist yet.
// Information about the current run is written into the exec_info table when
// the recorder is closed.
func NewDataRecorder(path string) DataRecorder {
	w := newSQLiteWriter()
	w.dbName = path
	w.Init()

	w.exec = NewExecRecorder(w)
	w.exec.Start()

	atexit.Register(func() { w.Flush() })

	return w
}

// NewDataRecorderWithDB creates a new DataRecorder with a given database.
func NewDataRecorderWithDB(db *sql.DB) DataRecorder {
	w := newSQLiteWriter()
	w.DB = db

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into SQLite database
type sqliteWriter struct {
	*sql.DB

	lock       sync.Mutex
	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
	closed     bool

	exec *ExecRecorder
}

func newSQLiteWriter() *sqliteWriter {
	return &sqliteWriter{
		batchSize: 100000,
		tables:    make(map[string]*table),
	}
}

// Init establishes a connection to the database.
func (t *sqliteWriter) Init() {
	if t.dbName == "" {
		t.dbName = "eventreport_" + xid.New().String()
	}

	filename := t.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func entryType(entry any) reflect.Type {
	types := reflect.TypeOf(entry)
	if types != nil && types.Kind() == reflect.Ptr {
		types = types.Elem()
	}

	return types
}

func checkStructFields(entry any) error {
	types := entryType(entry)
	if types == nil || types.Kind() != reflect.Struct {
		return fmt.Errorf("entry %T is not a struct", entry)
	}

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)

		if !field.IsExported() {
			return fmt.Errorf("field %s of %v is not exported", field.Name, types)
		}

		if !isAllowedType(field.Type.Kind()) {
			return fmt.Errorf("field %s of %v has unsupported type %v",
				field.Name, types, field.Type)
		}
	}

	return nil
}

func (t *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	structType := entryType(sampleEntry)

	if existing, ok := t.tables[tableName]; ok {
		if existing.structType != structType {
			panic(fmt.Sprintf("table %s already exists with entries of %v",
				tableName, existing.structType))
		}

		return
	}

	n := structs.Names(reflect.Indirect(reflect.ValueOf(sampleEntry)).Interface())
	fields := strings.Join(n, ", \n\t")

	createTableSQL := `CREATE TABLE IF NOT EXISTS ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	t.mustExecute(createTableSQL)

	t.tables[tableName] = &table{structType: structType}
}

func (t *sqliteWriter) InsertData(tableName string, entry any) {
	t.lock.Lock()
	defer t.lock.Unlock()

	table, exists := t.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if entryType(entry) != table.structType {
		panic(fmt.Sprintf("table %s holds %v, not %T",
			tableName, table.structType, entry))
	}

	table.entries = append(table.entries, entry)

	t.entryCount++
	if t.entryCount >= t.batchSize {
		t.flushLocked()
	}
}

func (t *sqliteWriter) ListTables() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	tables := make([]string, 0, len(t.tables))
	for table := range t.tables {
		tables = append(tables, table)
	}

	sort.Strings(tables)

	return tables
}

func (t *sqliteWriter) Flush() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.flushLocked()
}

func (t *sqliteWriter) flushLocked() {
	if t.entryCount == 0 || t.closed {
		return
	}

	tx, err := t.Begin()
	if err != nil {
		panic(err)
	}

	for tableName, table := range t.tables {
		if len(table.entries) == 0 {
			continue
		}

		stmt, err := tx.Prepare(insertStatement(tableName, table.structType))
		if err != nil {
			panic(err)
		}

		for _, entry := range table.entries {
			_, err := stmt.Exec(fieldValues(entry)...)
			if err != nil {
				panic(err)
			}
		}

		stmt.Close()

		table.entries = nil
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	t.entryCount = 0
}

func (t *sqliteWriter) Close() error {
	if t.exec != nil {
		t.exec.End()
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.closed {
		return nil
	}

	t.flushLocked()
	t.closed = true

	return t.DB.Close()
}

func (t *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func insertStatement(tableName string, structType reflect.Type) string {
	n := make([]string, structType.NumField())
	for i := range n {
		n[i] = "?"
	}

	return "INSERT INTO " + tableName + " VALUES (" + strings.Join(n, ", ") + ")"
}

func fieldValues(entry any) []any {
	v := reflect.Indirect(reflect.ValueOf(entry))

	values := make([]any, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		values = append(values, v.Field(i).Interface())
	}

	return values
}
