package storage

import (
	"context"

	"github.com/dshills/geolog-mcp/pkg/types"
)

// Storage is the record store consumed by the consistency engine
type Storage interface {
	Repositories

	// RunAtomic runs fn inside one transaction. Any error returned by fn,
	// or a failed commit, rolls back every write fn made.
	RunAtomic(ctx context.Context, fn func(tx Tx) error) error

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Repositories
}

// Repositories gives typed access to every table
type Repositories interface {
	Projects() Repository[types.Project]
	Points() Repository[types.Point]
	Cores() Repository[types.Core]
	StrengthWeathering() Repository[types.StrengthWeathering]
	Discontinuities() Repository[types.Discontinuity]
	CoreConditions() Repository[types.CoreCondition]
	Samples() Repository[types.Sample]
	HydraulicConds() Repository[types.HydraulicCond]
	SoilProfiles() Repository[types.SoilProfile]
	Piezometers() Repository[types.Piezometer]
	WaterObservations() Repository[types.WaterObservation]
	Methods() Repository[types.Method]
}

// Repository is the table contract for one entity. Lookups are equality
// matches on an indexed field; ordering is insertion order.
type Repository[T any] interface {
	Find(ctx context.Context, field Field[T], value interface{}) (*T, error)
	FindAll(ctx context.Context, field Field[T], value interface{}) ([]*T, error)
	List(ctx context.Context) ([]*T, error)
	Count(ctx context.Context, field Field[T], value interface{}) (int, error)
	Insert(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	UpdateByID(ctx context.Context, id int64, patch ...Assignment[T]) error
	UpdateWhere(ctx context.Context, field Field[T], value interface{}, patch ...Assignment[T]) (int, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteWhere(ctx context.Context, field Field[T], value interface{}) (int, error)
}

// Field names a column of T's table. Values exist only for the fields
// declared in this package, so a field of one table cannot address another.
type Field[T any] struct {
	column string
}

// Column returns the SQL column name
func (f Field[T]) Column() string {
	return f.column
}

// Assignment is one column write of a partial update
type Assignment[T any] struct {
	field Field[T]
	value interface{}
}

// Set builds an assignment for a partial update
func Set[T any](field Field[T], value interface{}) Assignment[T] {
	return Assignment[T]{field: field, value: value}
}
