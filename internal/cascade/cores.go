package cascade

import (
	"context"

	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// CreateCore stores a drilling run. RQD above TCR is accepted and reported
// as a warning.
func (e *Engine) CreateCore(ctx context.Context, c types.Core) (*CoreResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err := e.run(ctx, "create_core", []string{pointKey(c.PointID)}, func(tx storage.Tx) error {
		if err := requirePoint(ctx, tx, c.PointID); err != nil {
			return err
		}
		run, err := e.nextCoreRun(ctx, tx, c.PointID)
		if err != nil {
			return err
		}
		id, err := e.newID(ctx, PrefixCore, idExists(tx.Cores(), storage.CoreKey))
		if err != nil {
			return err
		}

		c.ID = 0
		c.CoreID = id
		c.RunNumber = run
		c.SyncStatus = types.SyncDirty
		return tx.Cores().Insert(ctx, &c)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("core created", "point_id", c.PointID, "core_id", c.CoreID, "run_number", c.RunNumber)
	return &CoreResult{Core: &c, Warnings: c.Warnings()}, nil
}

// UpdateCore rewrites the interval, recovery lengths and ratings of a run
func (e *Engine) UpdateCore(ctx context.Context, c types.Core) (*CoreResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	current, err := e.store.Cores().Find(ctx, storage.CoreKey, c.CoreID)
	if err != nil {
		return nil, err
	}

	err = e.run(ctx, "update_core", []string{pointKey(current.PointID)}, func(tx storage.Tx) error {
		current, err := tx.Cores().Find(ctx, storage.CoreKey, c.CoreID)
		if err != nil {
			return err
		}
		c.ID = current.ID
		c.PointID = current.PointID
		c.RunNumber = current.RunNumber
		c.SyncStatus = types.SyncDirty
		return tx.Cores().Update(ctx, &c)
	})
	if err != nil {
		return nil, err
	}
	return &CoreResult{Core: &c, Warnings: c.Warnings()}, nil
}

// DeleteCore removes a run and its strength/weathering row and renumbers the
// later runs of the point.
func (e *Engine) DeleteCore(ctx context.Context, coreID string) (*DeleteResult, error) {
	current, err := e.store.Cores().Find(ctx, storage.CoreKey, coreID)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Deleted: map[string]int{}}
	err = e.run(ctx, "delete_core", []string{pointKey(current.PointID)}, func(tx storage.Tx) error {
		target, err := tx.Cores().Find(ctx, storage.CoreKey, coreID)
		if err != nil {
			return err
		}
		if err := tx.Cores().DeleteByID(ctx, target.ID); err != nil {
			return err
		}
		res.Deleted[tableCores] = 1

		n, err := tx.StrengthWeathering().DeleteWhere(ctx, storage.StrengthCore, coreID)
		if err != nil {
			return err
		}
		res.Deleted[tableStrength] = n

		res.Renumbered, err = renumberCores(ctx, tx, target.PointID, target.RunNumber)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("core deleted", "point_id", current.PointID, "core_id", coreID, "renumbered", res.Renumbered)
	return res, nil
}

// GetCore loads a run by identifier
func (e *Engine) GetCore(ctx context.Context, coreID string) (*CoreResult, error) {
	c, err := e.store.Cores().Find(ctx, storage.CoreKey, coreID)
	if err != nil {
		return nil, err
	}
	return &CoreResult{Core: c, Warnings: c.Warnings()}, nil
}

// ListCores returns the runs of a point in insertion order
func (e *Engine) ListCores(ctx context.Context, pointID string) ([]*types.Core, error) {
	return e.store.Cores().FindAll(ctx, storage.CorePoint, pointID)
}

// SaveStrengthWeathering creates or replaces the labels of a core
func (e *Engine) SaveStrengthWeathering(ctx context.Context, sw types.StrengthWeathering) (*StrengthResult, error) {
	if err := sw.Validate(); err != nil {
		return nil, err
	}
	core, err := e.store.Cores().Find(ctx, storage.CoreKey, sw.CoreID)
	if err != nil {
		return nil, err
	}

	err = e.run(ctx, "save_strength", []string{pointKey(core.PointID)}, func(tx storage.Tx) error {
		if _, err := tx.Cores().Find(ctx, storage.CoreKey, sw.CoreID); err != nil {
			return err
		}
		sw.SyncStatus = types.SyncDirty

		existing, err := tx.StrengthWeathering().Find(ctx, storage.StrengthCore, sw.CoreID)
		switch {
		case err == nil:
			sw.ID = existing.ID
			sw.StrengthID = existing.StrengthID
			return tx.StrengthWeathering().Update(ctx, &sw)
		case types.IsNotFound(err):
			id, err := e.newID(ctx, PrefixStrength, idExists(tx.StrengthWeathering(), storage.StrengthKey))
			if err != nil {
				return err
			}
			sw.ID = 0
			sw.StrengthID = id
			return tx.StrengthWeathering().Insert(ctx, &sw)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &StrengthResult{StrengthWeathering: &sw, Indices: geotech.ComputeIndices(&sw)}, nil
}

// GetStrengthWeathering loads the labels of a core with their indices
func (e *Engine) GetStrengthWeathering(ctx context.Context, coreID string) (*StrengthResult, error) {
	sw, err := e.store.StrengthWeathering().Find(ctx, storage.StrengthCore, coreID)
	if err != nil {
		return nil, err
	}
	return &StrengthResult{StrengthWeathering: sw, Indices: geotech.ComputeIndices(sw)}, nil
}
