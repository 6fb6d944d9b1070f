package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// Database implements the Database interface on top of a pgx connection
// pool. DDL is generated from the registered schemas so the backend stays
// entity-agnostic; goose migrations in sql/ cover production upgrades.
type Database struct {
	mu      sync.RWMutex
	dsn     string
	pool    *pgxpool.Pool
	schemas map[string]*interfaces.Schema
}

// NewDatabase creates a postgres database for the given DSN. The
// connection is established on Connect.
func NewDatabase(dsn string) *Database {
	return &Database{
		dsn:     dsn,
		schemas: make(map[string]*interfaces.Schema),
	}
}

// Connect establishes the connection pool and verifies it with a ping
func (db *Database) Connect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, db.dsn)
	if err != nil {
		return &interfaces.DatabaseError{Op: "connect", Err: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return &interfaces.DatabaseError{Op: "ping", Err: err}
	}

	db.pool = pool
	return nil
}

// Disconnect closes the connection pool
func (db *Database) Disconnect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.pool != nil {
		db.pool.Close()
		db.pool = nil
	}
	return nil
}

// IsHealthy pings the database
func (db *Database) IsHealthy(ctx context.Context) bool {
	db.mu.RLock()
	pool := db.pool
	db.mu.RUnlock()

	if pool == nil {
		return false
	}
	return pool.Ping(ctx) == nil
}

// Transaction executes fn inside a database transaction
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	db.mu.RLock()
	pool := db.pool
	db.mu.RUnlock()

	if pool == nil {
		return interfaces.ErrDatabaseNotConnected
	}

	pgxTx, err := pool.Begin(ctx)
	if err != nil {
		return &interfaces.DatabaseError{Op: "begin", Err: err}
	}

	tx := &Transaction{tx: pgxTx}

	defer func() {
		if !tx.IsCompleted() {
			tx.Rollback(ctx)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// Repository returns a repository for the given schema
func (db *Database) Repository(schema *interfaces.Schema) interfaces.Repository {
	db.mu.Lock()
	db.schemas[schema.TableName] = schema
	db.mu.Unlock()

	return NewRepository(db, schema)
}

// Migrate creates tables and indexes for the given schemas. Statements
// are idempotent so startup migration is safe to repeat.
func (db *Database) Migrate(ctx context.Context, schemas []*interfaces.Schema) error {
	db.mu.Lock()
	pool := db.pool
	for _, schema := range schemas {
		db.schemas[schema.TableName] = schema
	}
	db.mu.Unlock()

	if pool == nil {
		return interfaces.ErrDatabaseNotConnected
	}

	for _, schema := range schemas {
		ddl, err := createTableDDL(schema)
		if err != nil {
			return &interfaces.DatabaseError{Op: "migrate " + schema.TableName, Err: err}
		}
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return &interfaces.DatabaseError{Op: "migrate " + schema.TableName, Err: err}
		}

		for _, index := range schema.Indexes {
			if _, err := pool.Exec(ctx, createIndexDDL(schema.TableName, index)); err != nil {
				return &interfaces.DatabaseError{Op: "migrate index " + index.Name, Err: err}
			}
		}
	}

	return nil
}

// Seed inserts initial data, skipping rows that violate constraints
func (db *Database) Seed(ctx context.Context, schema *interfaces.Schema, data []map[string]interface{}) error {
	repo := db.Repository(schema)

	for _, record := range data {
		if _, err := repo.Create(ctx, record); err != nil {
			continue
		}
	}

	return nil
}

func createTableDDL(schema *interfaces.Schema) (string, error) {
	names := make([]string, 0, len(schema.Fields))
	for name := range schema.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	// Primary key first for readable DDL
	sort.SliceStable(names, func(i, j int) bool {
		return schema.Fields[names[i]].PrimaryKey && !schema.Fields[names[j]].PrimaryKey
	})

	var cols []string
	for _, name := range names {
		field := schema.Fields[name]

		sqlType, err := columnType(field.Type)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", name, err)
		}

		parts := []string{name, sqlType}
		if field.PrimaryKey {
			parts = append(parts, "PRIMARY KEY")
		}
		if field.Unique && !field.PrimaryKey {
			parts = append(parts, "UNIQUE")
		}
		if !field.Nullable && !field.PrimaryKey {
			parts = append(parts, "NOT NULL")
		}
		if field.DefaultValue != nil {
			parts = append(parts, "DEFAULT "+defaultLiteral(field.DefaultValue))
		}
		if fk := field.ForeignKey; fk != nil {
			ref := fmt.Sprintf("REFERENCES %s(%s)", fk.Table, fk.Column)
			if fk.OnDelete != "" {
				ref += " ON DELETE " + strings.ReplaceAll(fk.OnDelete, "_", " ")
			}
			parts = append(parts, ref)
		}

		cols = append(cols, strings.Join(parts, " "))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", schema.TableName, strings.Join(cols, ", ")), nil
}

func createIndexDDL(tableName string, index interfaces.Index) string {
	unique := ""
	if index.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, index.Name, tableName, strings.Join(index.Columns, ", "))
}

func columnType(fieldType string) (string, error) {
	switch fieldType {
	case "string":
		return "TEXT", nil
	case "int":
		return "INTEGER", nil
	case "int64":
		return "BIGINT", nil
	case "bool":
		return "BOOLEAN", nil
	case "float64":
		return "DOUBLE PRECISION", nil
	case "time":
		return "TIMESTAMPTZ", nil
	default:
		return "", fmt.Errorf("unsupported field type %q", fieldType)
	}
}

func defaultLiteral(value interface{}) string {
	switch v := value.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Transaction wraps a pgx transaction
type Transaction struct {
	mu         sync.Mutex
	tx         pgx.Tx
	committed  bool
	rolledBack bool
}

// Commit commits the transaction
func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.committed || t.rolledBack {
		return interfaces.ErrTransactionCompleted
	}

	if err := t.tx.Commit(ctx); err != nil {
		return &interfaces.DatabaseError{Op: "commit", Err: err}
	}
	t.committed = true
	return nil
}

// Rollback rolls back the transaction
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.committed || t.rolledBack {
		return interfaces.ErrTransactionCompleted
	}

	if err := t.tx.Rollback(ctx); err != nil {
		return &interfaces.DatabaseError{Op: "rollback", Err: err}
	}
	t.rolledBack = true
	return nil
}

// IsCompleted returns true once the transaction is committed or rolled back
func (t *Transaction) IsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.committed || t.rolledBack
}
