package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dshills/geolog-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested row doesn't exist
	ErrNotFound = types.ErrRecordNotFound
	// ErrStorageFailure marks errors raised by the database itself
	ErrStorageFailure = types.ErrStorageFailure
)

const syncColumn = "sync_status"

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// One connection: cascades never interleave and ":memory:" stays a single database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin", "transaction", err)
	}
	return &sqliteTx{tx: tx}, nil
}

// RunAtomic runs fn in a transaction and commits only if fn succeeds
func (s *SQLiteStorage) RunAtomic(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit", "transaction", err)
	}
	return nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// Table accessors. Inside a transaction every read and write goes through
// the transaction; the single pooled connection is held by it.

func (s *SQLiteStorage) Projects() Repository[types.Project] { return newTable(projectTable, s.db) }
func (s *SQLiteStorage) Points() Repository[types.Point]     { return newTable(pointTable, s.db) }
func (s *SQLiteStorage) Cores() Repository[types.Core]       { return newTable(coreTable, s.db) }
func (s *SQLiteStorage) StrengthWeathering() Repository[types.StrengthWeathering] {
	return newTable(strengthTable, s.db)
}
func (s *SQLiteStorage) Discontinuities() Repository[types.Discontinuity] {
	return newTable(discontinuityTable, s.db)
}
func (s *SQLiteStorage) CoreConditions() Repository[types.CoreCondition] {
	return newTable(conditionTable, s.db)
}
func (s *SQLiteStorage) Samples() Repository[types.Sample] { return newTable(sampleTable, s.db) }
func (s *SQLiteStorage) HydraulicConds() Repository[types.HydraulicCond] {
	return newTable(hydraulicTable, s.db)
}
func (s *SQLiteStorage) SoilProfiles() Repository[types.SoilProfile] { return newTable(soilTable, s.db) }
func (s *SQLiteStorage) Piezometers() Repository[types.Piezometer] {
	return newTable(piezometerTable, s.db)
}
func (s *SQLiteStorage) WaterObservations() Repository[types.WaterObservation] {
	return newTable(waterTable, s.db)
}
func (s *SQLiteStorage) Methods() Repository[types.Method] { return newTable(methodTable, s.db) }

func (t *sqliteTx) Projects() Repository[types.Project] { return newTable(projectTable, t.tx) }
func (t *sqliteTx) Points() Repository[types.Point]     { return newTable(pointTable, t.tx) }
func (t *sqliteTx) Cores() Repository[types.Core]       { return newTable(coreTable, t.tx) }
func (t *sqliteTx) StrengthWeathering() Repository[types.StrengthWeathering] {
	return newTable(strengthTable, t.tx)
}
func (t *sqliteTx) Discontinuities() Repository[types.Discontinuity] {
	return newTable(discontinuityTable, t.tx)
}
func (t *sqliteTx) CoreConditions() Repository[types.CoreCondition] {
	return newTable(conditionTable, t.tx)
}
func (t *sqliteTx) Samples() Repository[types.Sample] { return newTable(sampleTable, t.tx) }
func (t *sqliteTx) HydraulicConds() Repository[types.HydraulicCond] {
	return newTable(hydraulicTable, t.tx)
}
func (t *sqliteTx) SoilProfiles() Repository[types.SoilProfile] { return newTable(soilTable, t.tx) }
func (t *sqliteTx) Piezometers() Repository[types.Piezometer] {
	return newTable(piezometerTable, t.tx)
}
func (t *sqliteTx) WaterObservations() Repository[types.WaterObservation] {
	return newTable(waterTable, t.tx)
}
func (t *sqliteTx) Methods() Repository[types.Method] { return newTable(methodTable, t.tx) }
