package cascade

import (
	"context"

	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// Derived strata. Every sample and hydraulic test owns exactly one soil
// profile at the midpoint of its interval, marked by a link field.

func sampleDescription(s *types.Sample) string {
	return geotech.SampleDescription(s.Number, s.Depth, s.Bottom, geotech.SampleN(s))
}

func (e *Engine) hydraulicDescription(h *types.HydraulicCond) string {
	return geotech.HydraulicDescription(h.Number, h.Depth, h.Bottom, e.cfg.Permeability.Class(h.K, h.Check))
}

// linkField picks the soil column that carries an owner's identifier
type linkField = storage.Field[types.SoilProfile]

// insertLinkedSoil creates the derived stratum of an owner
func (e *Engine) insertLinkedSoil(ctx context.Context, tx storage.Tx, pointID string, depth, bottom float64, description string, link linkField, ownerID string) (*types.SoilProfile, error) {
	id, err := e.newID(ctx, PrefixSoil, idExists(tx.SoilProfiles(), storage.SoilKey))
	if err != nil {
		return nil, err
	}

	soil := &types.SoilProfile{
		SoilID:      id,
		PointID:     pointID,
		Depth:       geotech.Midpoint(depth, bottom),
		Description: description,
		SyncStatus:  types.SyncDirty,
	}
	switch link {
	case storage.SoilLinkedSample:
		soil.LinkedSampleID = ownerID
	case storage.SoilLinkedHydraulic:
		soil.LinkedHydraulicID = ownerID
	}
	if err := tx.SoilProfiles().Insert(ctx, soil); err != nil {
		return nil, err
	}
	return soil, nil
}

// refreshLinkedSoil rewrites the depth and description of an owner's stratum.
// A missing row is logged and skipped.
func (e *Engine) refreshLinkedSoil(ctx context.Context, tx storage.Tx, link linkField, ownerID string, depth, bottom float64, description string) (*types.SoilProfile, error) {
	soil, err := tx.SoilProfiles().Find(ctx, link, ownerID)
	if types.IsNotFound(err) {
		e.log.Warn("linked soil profile missing", "owner_id", ownerID, "link", link.Column())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	soil.Depth = geotech.Midpoint(depth, bottom)
	soil.Description = description
	err = tx.SoilProfiles().UpdateByID(ctx, soil.ID,
		storage.Set(storage.SoilDepth, soil.Depth),
		storage.Set(storage.SoilDescription, soil.Description),
	)
	if err != nil {
		return nil, err
	}
	soil.SyncStatus = types.SyncDirty
	return soil, nil
}

// removeLinkedSoil deletes an owner's stratum
func removeLinkedSoil(ctx context.Context, tx storage.Tx, link linkField, ownerID string) (int, error) {
	return tx.SoilProfiles().DeleteWhere(ctx, link, ownerID)
}
