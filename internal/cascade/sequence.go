package cascade

import (
	"context"

	"github.com/dshills/geolog-mcp/internal/storage"
)

// Ordinals are dense 1..N per point and follow insertion, not depth. Removing
// ordinal k shifts every later record down by one.

// nextCoreRun returns the run number of a new core under the configured policy
func (e *Engine) nextCoreRun(ctx context.Context, tx storage.Tx, pointID string) (int, error) {
	if e.cfg.CoreNumbering == NumberByMax {
		cores, err := tx.Cores().FindAll(ctx, storage.CorePoint, pointID)
		if err != nil {
			return 0, err
		}
		highest := 0
		for _, c := range cores {
			highest = max(highest, c.RunNumber)
		}
		return highest + 1, nil
	}

	n, err := tx.Cores().Count(ctx, storage.CorePoint, pointID)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

func renumberCores(ctx context.Context, tx storage.Tx, pointID string, removed int) (int, error) {
	cores, err := tx.Cores().FindAll(ctx, storage.CorePoint, pointID)
	if err != nil {
		return 0, err
	}
	shifted := 0
	for _, c := range cores {
		if c.RunNumber <= removed {
			continue
		}
		if err := tx.Cores().UpdateByID(ctx, c.ID, storage.Set(storage.CoreRunNumber, c.RunNumber-1)); err != nil {
			return shifted, err
		}
		shifted++
	}
	return shifted, nil
}

func (e *Engine) renumberSamples(ctx context.Context, tx storage.Tx, pointID string, removed int) (int, error) {
	samples, err := tx.Samples().FindAll(ctx, storage.SamplePoint, pointID)
	if err != nil {
		return 0, err
	}
	shifted := 0
	for _, s := range samples {
		if s.Number <= removed {
			continue
		}
		s.Number--
		if err := tx.Samples().UpdateByID(ctx, s.ID, storage.Set(storage.SampleNumber, s.Number)); err != nil {
			return shifted, err
		}
		if err := e.relabel(ctx, tx, storage.SoilLinkedSample, s.SampleID, sampleDescription(s)); err != nil {
			return shifted, err
		}
		shifted++
	}
	return shifted, nil
}

func (e *Engine) renumberHydraulic(ctx context.Context, tx storage.Tx, pointID string, removed int) (int, error) {
	tests, err := tx.HydraulicConds().FindAll(ctx, storage.HydraulicPoint, pointID)
	if err != nil {
		return 0, err
	}
	shifted := 0
	for _, h := range tests {
		if h.Number <= removed {
			continue
		}
		h.Number--
		if err := tx.HydraulicConds().UpdateByID(ctx, h.ID, storage.Set(storage.HydraulicNumber, h.Number)); err != nil {
			return shifted, err
		}
		if err := e.relabel(ctx, tx, storage.SoilLinkedHydraulic, h.HydraulicID, e.hydraulicDescription(h)); err != nil {
			return shifted, err
		}
		shifted++
	}
	return shifted, nil
}

// relabel rewrites only the description of an owner's stratum
func (e *Engine) relabel(ctx context.Context, tx storage.Tx, link linkField, ownerID, description string) error {
	n, err := tx.SoilProfiles().UpdateWhere(ctx, link, ownerID, storage.Set(storage.SoilDescription, description))
	if err != nil {
		return err
	}
	if n == 0 {
		e.log.Warn("linked soil profile missing", "owner_id", ownerID, "link", link.Column())
	}
	return nil
}
