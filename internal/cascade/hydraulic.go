package cascade

import (
	"context"

	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// CreateHydraulic stores a permeability test with the next number of its
// point and creates its derived stratum.
func (e *Engine) CreateHydraulic(ctx context.Context, h types.HydraulicCond) (*HydraulicResult, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	var soil *types.SoilProfile
	err := e.run(ctx, "create_hydraulic", []string{pointKey(h.PointID)}, func(tx storage.Tx) error {
		if err := requirePoint(ctx, tx, h.PointID); err != nil {
			return err
		}
		n, err := tx.HydraulicConds().Count(ctx, storage.HydraulicPoint, h.PointID)
		if err != nil {
			return err
		}
		id, err := e.newID(ctx, PrefixHydraulic, idExists(tx.HydraulicConds(), storage.HydraulicKey))
		if err != nil {
			return err
		}

		h.ID = 0
		h.HydraulicID = id
		h.Number = n + 1
		h.SyncStatus = types.SyncDirty
		if err := tx.HydraulicConds().Insert(ctx, &h); err != nil {
			return err
		}

		soil, err = e.insertLinkedSoil(ctx, tx, h.PointID, h.Depth, h.Bottom, e.hydraulicDescription(&h), storage.SoilLinkedHydraulic, h.HydraulicID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("hydraulic test created", "point_id", h.PointID, "hydraulic_id", h.HydraulicID, "number", h.Number)
	return &HydraulicResult{Hydraulic: &h, Soil: soil}, nil
}

// UpdateHydraulic rewrites the interval, K and check flag and recomputes the
// derived stratum.
func (e *Engine) UpdateHydraulic(ctx context.Context, h types.HydraulicCond) (*HydraulicResult, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	current, err := e.store.HydraulicConds().Find(ctx, storage.HydraulicKey, h.HydraulicID)
	if err != nil {
		return nil, err
	}

	var soil *types.SoilProfile
	err = e.run(ctx, "update_hydraulic", []string{pointKey(current.PointID)}, func(tx storage.Tx) error {
		current, err := tx.HydraulicConds().Find(ctx, storage.HydraulicKey, h.HydraulicID)
		if err != nil {
			return err
		}
		h.ID = current.ID
		h.PointID = current.PointID
		h.Number = current.Number
		h.SyncStatus = types.SyncDirty
		if err := tx.HydraulicConds().Update(ctx, &h); err != nil {
			return err
		}

		soil, err = e.refreshLinkedSoil(ctx, tx, storage.SoilLinkedHydraulic, h.HydraulicID, h.Depth, h.Bottom, e.hydraulicDescription(&h))
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("hydraulic test updated", "point_id", h.PointID, "hydraulic_id", h.HydraulicID)
	return &HydraulicResult{Hydraulic: &h, Soil: soil}, nil
}

// DeleteHydraulic removes a permeability test and its stratum and renumbers
// the later tests of the point.
func (e *Engine) DeleteHydraulic(ctx context.Context, hydraulicID string) (*DeleteResult, error) {
	current, err := e.store.HydraulicConds().Find(ctx, storage.HydraulicKey, hydraulicID)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Deleted: map[string]int{}}
	err = e.run(ctx, "delete_hydraulic", []string{pointKey(current.PointID)}, func(tx storage.Tx) error {
		target, err := tx.HydraulicConds().Find(ctx, storage.HydraulicKey, hydraulicID)
		if err != nil {
			return err
		}
		if err := tx.HydraulicConds().DeleteByID(ctx, target.ID); err != nil {
			return err
		}
		res.Deleted[tableHydraulic] = 1

		n, err := removeLinkedSoil(ctx, tx, storage.SoilLinkedHydraulic, target.HydraulicID)
		if err != nil {
			return err
		}
		res.Deleted[tableSoil] = n

		res.Renumbered, err = e.renumberHydraulic(ctx, tx, target.PointID, target.Number)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("hydraulic test deleted", "point_id", current.PointID, "hydraulic_id", hydraulicID, "renumbered", res.Renumbered)
	return res, nil
}

// GetHydraulic loads a permeability test with its stratum
func (e *Engine) GetHydraulic(ctx context.Context, hydraulicID string) (*HydraulicResult, error) {
	h, err := e.store.HydraulicConds().Find(ctx, storage.HydraulicKey, hydraulicID)
	if err != nil {
		return nil, err
	}
	soil, err := e.store.SoilProfiles().Find(ctx, storage.SoilLinkedHydraulic, hydraulicID)
	if err != nil && !types.IsNotFound(err) {
		return nil, err
	}
	return &HydraulicResult{Hydraulic: h, Soil: soil}, nil
}

// ListHydraulic returns the permeability tests of a point in insertion order
func (e *Engine) ListHydraulic(ctx context.Context, pointID string) ([]*types.HydraulicCond, error) {
	return e.store.HydraulicConds().FindAll(ctx, storage.HydraulicPoint, pointID)
}
