package cascade

import (
	"context"

	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// CreateSample stores a resistance test with the next number of its point
// and creates its derived stratum in the same transaction.
func (e *Engine) CreateSample(ctx context.Context, s types.Sample) (*SampleResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var soil *types.SoilProfile
	err := e.run(ctx, "create_sample", []string{pointKey(s.PointID)}, func(tx storage.Tx) error {
		if err := requirePoint(ctx, tx, s.PointID); err != nil {
			return err
		}
		n, err := tx.Samples().Count(ctx, storage.SamplePoint, s.PointID)
		if err != nil {
			return err
		}
		id, err := e.newID(ctx, PrefixSample, idExists(tx.Samples(), storage.SampleKey))
		if err != nil {
			return err
		}

		s.ID = 0
		s.SampleID = id
		s.Number = n + 1
		s.SyncStatus = types.SyncDirty
		if err := tx.Samples().Insert(ctx, &s); err != nil {
			return err
		}

		soil, err = e.insertLinkedSoil(ctx, tx, s.PointID, s.Depth, s.Bottom, sampleDescription(&s), storage.SoilLinkedSample, s.SampleID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("sample created", "point_id", s.PointID, "sample_id", s.SampleID, "number", s.Number)
	return &SampleResult{Sample: &s, NValue: geotech.SampleN(&s).String(), Soil: soil}, nil
}

// UpdateSample rewrites the measured fields of a sample and recomputes its
// derived stratum. The point and number are kept.
func (e *Engine) UpdateSample(ctx context.Context, s types.Sample) (*SampleResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	current, err := e.store.Samples().Find(ctx, storage.SampleKey, s.SampleID)
	if err != nil {
		return nil, err
	}

	var soil *types.SoilProfile
	err = e.run(ctx, "update_sample", []string{pointKey(current.PointID)}, func(tx storage.Tx) error {
		current, err := tx.Samples().Find(ctx, storage.SampleKey, s.SampleID)
		if err != nil {
			return err
		}
		s.ID = current.ID
		s.PointID = current.PointID
		s.Number = current.Number
		s.SyncStatus = types.SyncDirty
		if err := tx.Samples().Update(ctx, &s); err != nil {
			return err
		}

		soil, err = e.refreshLinkedSoil(ctx, tx, storage.SoilLinkedSample, s.SampleID, s.Depth, s.Bottom, sampleDescription(&s))
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("sample updated", "point_id", s.PointID, "sample_id", s.SampleID)
	return &SampleResult{Sample: &s, NValue: geotech.SampleN(&s).String(), Soil: soil}, nil
}

// DeleteSample removes a sample and its derived stratum, then closes the gap
// in the point's numbering and rewrites the descriptions that moved.
func (e *Engine) DeleteSample(ctx context.Context, sampleID string) (*DeleteResult, error) {
	current, err := e.store.Samples().Find(ctx, storage.SampleKey, sampleID)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Deleted: map[string]int{}}
	err = e.run(ctx, "delete_sample", []string{pointKey(current.PointID)}, func(tx storage.Tx) error {
		target, err := tx.Samples().Find(ctx, storage.SampleKey, sampleID)
		if err != nil {
			return err
		}
		if err := tx.Samples().DeleteByID(ctx, target.ID); err != nil {
			return err
		}
		res.Deleted[tableSamples] = 1

		n, err := removeLinkedSoil(ctx, tx, storage.SoilLinkedSample, target.SampleID)
		if err != nil {
			return err
		}
		res.Deleted[tableSoil] = n

		res.Renumbered, err = e.renumberSamples(ctx, tx, target.PointID, target.Number)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("sample deleted", "point_id", current.PointID, "sample_id", sampleID, "renumbered", res.Renumbered)
	return res, nil
}

// GetSample loads a sample by identifier
func (e *Engine) GetSample(ctx context.Context, sampleID string) (*SampleResult, error) {
	s, err := e.store.Samples().Find(ctx, storage.SampleKey, sampleID)
	if err != nil {
		return nil, err
	}
	soil, err := e.store.SoilProfiles().Find(ctx, storage.SoilLinkedSample, sampleID)
	if err != nil && !types.IsNotFound(err) {
		return nil, err
	}
	return &SampleResult{Sample: s, NValue: geotech.SampleN(s).String(), Soil: soil}, nil
}

// ListSamples returns the samples of a point in insertion order
func (e *Engine) ListSamples(ctx context.Context, pointID string) ([]*types.Sample, error) {
	return e.store.Samples().FindAll(ctx, storage.SamplePoint, pointID)
}
