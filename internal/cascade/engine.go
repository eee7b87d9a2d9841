package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/internal/logger"
	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// NumberingPolicy chooses the run number of a new core
type NumberingPolicy string

const (
	// NumberByCount assigns count+1, the rule samples and hydraulic tests use
	NumberByCount NumberingPolicy = "count"
	// NumberByMax assigns max(run_number)+1
	NumberByMax NumberingPolicy = "max"
)

// DefaultDescriptionThreshold leaves the very-permeable class to the check flag
const DefaultDescriptionThreshold = 0

// Config holds the engine policies
type Config struct {
	CoreNumbering NumberingPolicy
	// Permeability classifies K when writing derived descriptions
	Permeability geotech.PermeabilityPolicy
	IDRetry      RetryConfig
	IDCacheSize  int
}

// DefaultConfig returns count numbering, flag-only permeability and the
// default id retry bound
func DefaultConfig() Config {
	return Config{
		CoreNumbering: NumberByCount,
		Permeability:  geotech.PermeabilityPolicy{Threshold: DefaultDescriptionThreshold},
		IDRetry:       DefaultRetryConfig(),
		IDCacheSize:   DefaultIssuedCacheSize,
	}
}

// Observer receives cascade outcomes
type Observer interface {
	CascadeFinished(op string, elapsed time.Duration, err error)
	IDCollision(prefix string)
}

type nopObserver struct{}

func (nopObserver) CascadeFinished(string, time.Duration, error) {}
func (nopObserver) IDCollision(string)                           {}

// Engine applies every mutation of the record store. Each public mutation is
// one transaction: it either commits all of its writes or none.
type Engine struct {
	store storage.Storage
	cfg   Config
	ids   *IDGenerator
	locks *KeyedLock
	log   *logger.Logger
	obs   Observer
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithObserver sets the metrics sink
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.obs = o }
}

// New creates an engine over store
func New(store storage.Storage, cfg Config, opts ...Option) (*Engine, error) {
	switch cfg.CoreNumbering {
	case "":
		cfg.CoreNumbering = NumberByCount
	case NumberByCount, NumberByMax:
	default:
		return nil, fmt.Errorf("unknown core numbering policy %q", cfg.CoreNumbering)
	}

	ids, err := NewIDGenerator(cfg.IDRetry, cfg.IDCacheSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store: store,
		cfg:   cfg,
		ids:   ids,
		locks: NewKeyedLock(),
		log:   logger.NewNop(),
		obs:   nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	ids.onCollision = func(p Prefix) { e.obs.IDCollision(string(p)) }
	return e, nil
}

// Store exposes the underlying store for read paths
func (e *Engine) Store() storage.Storage {
	return e.store
}

// Config returns the active policies
func (e *Engine) Config() Config {
	return e.cfg
}

// run holds the lock keys for the duration of one atomic cascade
func (e *Engine) run(ctx context.Context, op string, keys []string, fn func(tx storage.Tx) error) error {
	release, err := e.locks.Acquire(ctx, keys...)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	err = e.store.RunAtomic(ctx, fn)
	e.obs.CascadeFinished(op, time.Since(start), err)

	switch {
	case err == nil:
	case errors.Is(err, types.ErrStorageFailure):
		e.log.Error("cascade rolled back", "op", op, "error", err)
	default:
		e.log.Warn("cascade rejected", "op", op, "error", err)
	}
	return err
}

// newID generates a record identifier unique within its table
func (e *Engine) newID(ctx context.Context, prefix Prefix, exists existsFunc) (string, error) {
	return e.ids.Next(ctx, prefix, exists)
}

func idExists[T any](repo storage.Repository[T], key storage.Field[T]) existsFunc {
	return func(ctx context.Context, id string) (bool, error) {
		n, err := repo.Count(ctx, key, id)
		return n > 0, err
	}
}

// requirePoint fails with ErrRecordNotFound unless a point with the id exists
func requirePoint(ctx context.Context, r storage.Repositories, pointID string) error {
	n, err := r.Points().Count(ctx, storage.PointKey, pointID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("point %q: %w", pointID, types.ErrRecordNotFound)
	}
	return nil
}

// findPoint resolves a point within its project
func findPoint(ctx context.Context, r storage.Repositories, projectID, pointID string) (*types.Point, error) {
	points, err := r.Points().FindAll(ctx, storage.PointKey, pointID)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		if p.ProjectID == projectID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("point %q in project %q: %w", pointID, projectID, types.ErrRecordNotFound)
}
