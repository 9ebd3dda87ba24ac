// Package datarecording stores what the controller did, tick by tick, in a
// SQLite database.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/sarchlab/keithnet/logging"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all tables, sorted.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

// DefaultBatchSize is the number of buffered entries that triggers a flush.
const DefaultBatchSize = 1000

// New creates a SQLite backed DataRecorder at path. The buffered entries are
// flushed when the process exits through atexit.
func New(path string) (DataRecorder, error) {
	w := NewSQLiteWriter(path)
	if err := w.Init(); err != nil {
		return nil, err
	}

	atexit.Register(func() { w.Flush() })

	return w, nil
}

type table struct {
	structType reflect.Type
	entries    []any
}

// SQLiteWriter is the writer that writes data into SQLite database
type SQLiteWriter struct {
	*sql.DB

	lock      sync.Mutex
	dbName    string
	tables    map[string]*table
	batchSize int
	entries   int
}

// NewSQLiteWriter creates a writer for the database at path. An empty path
// picks a unique name in the working directory. A path without extension
// gets ".sqlite3" appended.
func NewSQLiteWriter(path string) *SQLiteWriter {
	return &SQLiteWriter{
		dbName:    path,
		tables:    make(map[string]*table),
		batchSize: DefaultBatchSize,
	}
}

// Filename returns the file the writer records into.
func (t *SQLiteWriter) Filename() string {
	name := t.dbName
	if name == "" {
		t.dbName = "keithnet_recording_" + xid.New().String()
		name = t.dbName
	}

	if filepath.Ext(name) == "" {
		name += ".sqlite3"
	}

	return name
}

// ErrFileExists is returned by Init when the database file is already there.
var ErrFileExists = errors.New("recording file already exists")

// Init creates the database file and connects to it. It never reuses an
// existing file.
func (t *SQLiteWriter) Init() error {
	filename := t.Filename()

	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrFileExists, filename)
	}

	if err != nil {
		return fmt.Errorf("cannot create %s: %w", filename, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot create %s: %w", filename, err)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return err
	}

	logging.Infof("recording to %s", filename)

	t.DB = db

	return nil
}

// SetBatchSize sets how many entries are buffered before they are written.
func (t *SQLiteWriter) SetBatchSize(n int) {
	if n <= 0 {
		panic("batch size must be positive")
	}

	t.batchSize = n
}

func isAllowedKind(kind reflect.Kind) bool {
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

func checkStructFields(entry any) error {
	typ := reflect.TypeOf(entry)
	if typ == nil || typ.Kind() != reflect.Struct {
		return errors.New("entry must be a struct")
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if !field.IsExported() {
			return fmt.Errorf("field %s is not exported", field.Name)
		}

		if !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("field %s of kind %s cannot be stored",
				field.Name, field.Type.Kind())
		}
	}

	return nil
}

// CreateTable creates the table. It panics if the entry has fields that
// cannot be stored in a column.
func (t *SQLiteWriter) CreateTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	n := structs.Names(sampleEntry)
	fields := strings.Join(n, ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	t.mustExecute(createTableSQL)

	t.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
}

// InsertData buffers the entry.
func (t *SQLiteWriter) InsertData(tableName string, entry any) {
	t.lock.Lock()
	defer t.lock.Unlock()

	tbl, exists := t.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != tbl.structType {
		panic(fmt.Sprintf("table %s stores %s, got %T",
			tableName, tbl.structType, entry))
	}

	tbl.entries = append(tbl.entries, entry)

	t.entries++
	if t.entries >= t.batchSize {
		t.flush()
	}
}

// ListTables returns the names of the created tables.
func (t *SQLiteWriter) ListTables() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	tables := make([]string, 0, len(t.tables))
	for name := range t.tables {
		tables = append(tables, name)
	}

	sort.Strings(tables)

	return tables
}

// Flush writes the buffered entries in one transaction.
func (t *SQLiteWriter) Flush() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.flush()
}

// Close flushes the buffered entries and closes the database.
func (t *SQLiteWriter) Close() error {
	t.Flush()

	return t.DB.Close()
}

func (t *SQLiteWriter) flush() {
	if t.entries == 0 {
		return
	}

	t.mustExecute("BEGIN TRANSACTION")
	defer t.mustExecute("COMMIT TRANSACTION")

	for tableName, tbl := range t.tables {
		if len(tbl.entries) == 0 {
			continue
		}

		stmt := t.prepareStatement(tableName, tbl.entries[0])

		for _, entry := range tbl.entries {
			v := reflect.ValueOf(entry)
			args := make([]any, 0, v.NumField())

			for i := 0; i < v.NumField(); i++ {
				args = append(args, v.Field(i).Interface())
			}

			if _, err := stmt.Exec(args...); err != nil {
				panic(err)
			}
		}

		tbl.entries = nil

		stmt.Close()
	}

	t.entries = 0
}

func (t *SQLiteWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		logging.Errorf("failed to execute: %s", query)
		panic(err)
	}

	return res
}

func (t *SQLiteWriter) prepareStatement(tableName string, entry any) *sql.Stmt {
	n := structs.Names(entry)
	for i := range n {
		n[i] = "?"
	}

	sqlStr := "INSERT INTO " + tableName + " VALUES (" + strings.Join(n, ", ") + ")"

	stmt, err := t.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	return stmt
}
