package cascade

import (
	"context"

	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// recordKind describes a point child without ordinals or derived rows
type recordKind[T any] struct {
	name     string
	prefix   Prefix
	repo     func(storage.Repositories) storage.Repository[T]
	key      storage.Field[T]
	keyOf    func(*T) *string
	pointOf  func(*T) *string
	rowID    func(*T) *int64
	syncOf   func(*T) *int
	validate func(*T) error
	// guard vets the stored row before an update or delete
	guard func(*T) error
}

func createRecord[T any](ctx context.Context, e *Engine, k *recordKind[T], row T) (*T, error) {
	if err := k.validate(&row); err != nil {
		return nil, err
	}
	pointID := *k.pointOf(&row)

	err := e.run(ctx, "create_"+k.name, []string{pointKey(pointID)}, func(tx storage.Tx) error {
		if err := requirePoint(ctx, tx, pointID); err != nil {
			return err
		}
		repo := k.repo(tx)
		id, err := e.newID(ctx, k.prefix, idExists(repo, k.key))
		if err != nil {
			return err
		}
		*k.rowID(&row) = 0
		*k.keyOf(&row) = id
		*k.syncOf(&row) = types.SyncDirty
		return repo.Insert(ctx, &row)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info(k.name+" created", "point_id", pointID, "id", *k.keyOf(&row))
	return &row, nil
}

func updateRecord[T any](ctx context.Context, e *Engine, k *recordKind[T], row T) (*T, error) {
	if err := k.validate(&row); err != nil {
		return nil, err
	}
	id := *k.keyOf(&row)
	current, err := k.repo(e.store).Find(ctx, k.key, id)
	if err != nil {
		return nil, err
	}

	err = e.run(ctx, "update_"+k.name, []string{pointKey(*k.pointOf(current))}, func(tx storage.Tx) error {
		repo := k.repo(tx)
		current, err := repo.Find(ctx, k.key, id)
		if err != nil {
			return err
		}
		if k.guard != nil {
			if err := k.guard(current); err != nil {
				return err
			}
		}
		*k.rowID(&row) = *k.rowID(current)
		*k.pointOf(&row) = *k.pointOf(current)
		*k.syncOf(&row) = types.SyncDirty
		return repo.Update(ctx, &row)
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func deleteRecord[T any](ctx context.Context, e *Engine, k *recordKind[T], id string) (*DeleteResult, error) {
	current, err := k.repo(e.store).Find(ctx, k.key, id)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Deleted: map[string]int{}}
	err = e.run(ctx, "delete_"+k.name, []string{pointKey(*k.pointOf(current))}, func(tx storage.Tx) error {
		repo := k.repo(tx)
		target, err := repo.Find(ctx, k.key, id)
		if err != nil {
			return err
		}
		if k.guard != nil {
			if err := k.guard(target); err != nil {
				return err
			}
		}
		if err := repo.DeleteByID(ctx, *k.rowID(target)); err != nil {
			return err
		}
		res.Deleted[k.name] = 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info(k.name+" deleted", "point_id", *k.pointOf(current), "id", id)
	return res, nil
}

var discontinuityKind = &recordKind[types.Discontinuity]{
	name:     tableDiscontinuities,
	prefix:   PrefixDiscontinuity,
	repo:     storage.Repositories.Discontinuities,
	key:      storage.DiscontinuityKey,
	keyOf:    func(d *types.Discontinuity) *string { return &d.DiscontinuityID },
	pointOf:  func(d *types.Discontinuity) *string { return &d.PointID },
	rowID:    func(d *types.Discontinuity) *int64 { return &d.ID },
	syncOf:   func(d *types.Discontinuity) *int { return &d.SyncStatus },
	validate: (*types.Discontinuity).Validate,
}

var conditionKind = &recordKind[types.CoreCondition]{
	name:     tableConditions,
	prefix:   PrefixCondition,
	repo:     storage.Repositories.CoreConditions,
	key:      storage.ConditionKey,
	keyOf:    func(c *types.CoreCondition) *string { return &c.CoreConditionID },
	pointOf:  func(c *types.CoreCondition) *string { return &c.PointID },
	rowID:    func(c *types.CoreCondition) *int64 { return &c.ID },
	syncOf:   func(c *types.CoreCondition) *int { return &c.SyncStatus },
	validate: (*types.CoreCondition).Validate,
}

var piezometerKind = &recordKind[types.Piezometer]{
	name:     tablePiezometers,
	prefix:   PrefixPiezometer,
	repo:     storage.Repositories.Piezometers,
	key:      storage.PiezometerKey,
	keyOf:    func(p *types.Piezometer) *string { return &p.PiezometerID },
	pointOf:  func(p *types.Piezometer) *string { return &p.PointID },
	rowID:    func(p *types.Piezometer) *int64 { return &p.ID },
	syncOf:   func(p *types.Piezometer) *int { return &p.SyncStatus },
	validate: (*types.Piezometer).Validate,
}

// soilKind is the manual stratum surface. Derived rows are refused.
var soilKind = &recordKind[types.SoilProfile]{
	name:     tableSoil,
	prefix:   PrefixSoil,
	repo:     storage.Repositories.SoilProfiles,
	key:      storage.SoilKey,
	keyOf:    func(s *types.SoilProfile) *string { return &s.SoilID },
	pointOf:  func(s *types.SoilProfile) *string { return &s.PointID },
	rowID:    func(s *types.SoilProfile) *int64 { return &s.ID },
	syncOf:   func(s *types.SoilProfile) *int { return &s.SyncStatus },
	validate: (*types.SoilProfile).Validate,
	guard:    protectLinked,
}

// protectLinked refuses manual edits of a stratum owned by a test
func protectLinked(s *types.SoilProfile) error {
	switch {
	case s.LinkedSampleID != "":
		return &types.ProtectedError{SoilID: s.SoilID, OwnerKind: "sample", OwnerID: s.LinkedSampleID}
	case s.LinkedHydraulicID != "":
		return &types.ProtectedError{SoilID: s.SoilID, OwnerKind: "hydraulic test", OwnerID: s.LinkedHydraulicID}
	}
	return nil
}

func (e *Engine) CreateDiscontinuity(ctx context.Context, d types.Discontinuity) (*types.Discontinuity, error) {
	return createRecord(ctx, e, discontinuityKind, d)
}

func (e *Engine) UpdateDiscontinuity(ctx context.Context, d types.Discontinuity) (*types.Discontinuity, error) {
	return updateRecord(ctx, e, discontinuityKind, d)
}

func (e *Engine) DeleteDiscontinuity(ctx context.Context, id string) (*DeleteResult, error) {
	return deleteRecord(ctx, e, discontinuityKind, id)
}

func (e *Engine) ListDiscontinuities(ctx context.Context, pointID string) ([]*types.Discontinuity, error) {
	return e.store.Discontinuities().FindAll(ctx, storage.DiscontinuityPoint, pointID)
}

func (e *Engine) CreateCoreCondition(ctx context.Context, c types.CoreCondition) (*types.CoreCondition, error) {
	return createRecord(ctx, e, conditionKind, c)
}

func (e *Engine) UpdateCoreCondition(ctx context.Context, c types.CoreCondition) (*types.CoreCondition, error) {
	return updateRecord(ctx, e, conditionKind, c)
}

func (e *Engine) DeleteCoreCondition(ctx context.Context, id string) (*DeleteResult, error) {
	return deleteRecord(ctx, e, conditionKind, id)
}

func (e *Engine) ListCoreConditions(ctx context.Context, pointID string) ([]*types.CoreCondition, error) {
	return e.store.CoreConditions().FindAll(ctx, storage.ConditionPoint, pointID)
}

// CreatePiezometer stores an instrument, filling the default graphic and color
func (e *Engine) CreatePiezometer(ctx context.Context, p types.Piezometer) (*types.Piezometer, error) {
	if p.Graphic == "" {
		p.Graphic = types.DefaultPiezometerGraphic
	}
	if p.Color == "" {
		p.Color = types.DefaultPiezometerColor
	}
	return createRecord(ctx, e, piezometerKind, p)
}

func (e *Engine) UpdatePiezometer(ctx context.Context, p types.Piezometer) (*types.Piezometer, error) {
	return updateRecord(ctx, e, piezometerKind, p)
}

func (e *Engine) DeletePiezometer(ctx context.Context, id string) (*DeleteResult, error) {
	return deleteRecord(ctx, e, piezometerKind, id)
}

func (e *Engine) ListPiezometers(ctx context.Context, pointID string) ([]*types.Piezometer, error) {
	return e.store.Piezometers().FindAll(ctx, storage.PiezometerPoint, pointID)
}

// CreateSoilProfile stores a manual stratum. Link fields belong to the
// sample and hydraulic paths and are rejected here.
func (e *Engine) CreateSoilProfile(ctx context.Context, s types.SoilProfile) (*types.SoilProfile, error) {
	if s.IsLinked() {
		return nil, types.ValueError("linked_sample_id", "derived strata are created by their test")
	}
	return createRecord(ctx, e, soilKind, s)
}

// UpdateSoilProfile rewrites a manual stratum. Derived rows fail with
// ErrLinkedRecordProtected and are left unchanged.
func (e *Engine) UpdateSoilProfile(ctx context.Context, s types.SoilProfile) (*types.SoilProfile, error) {
	s.LinkedSampleID = ""
	s.LinkedHydraulicID = ""
	return updateRecord(ctx, e, soilKind, s)
}

// DeleteSoilProfile removes a manual stratum. Derived rows fail with
// ErrLinkedRecordProtected.
func (e *Engine) DeleteSoilProfile(ctx context.Context, id string) (*DeleteResult, error) {
	return deleteRecord(ctx, e, soilKind, id)
}

// ListSoilProfiles returns manual and derived strata of a point
func (e *Engine) ListSoilProfiles(ctx context.Context, pointID string) ([]*types.SoilProfile, error) {
	return e.store.SoilProfiles().FindAll(ctx, storage.SoilPoint, pointID)
}

// SaveWaterObservation creates the water level of a point or replaces the
// first one stored.
func (e *Engine) SaveWaterObservation(ctx context.Context, w types.WaterObservation) (*types.WaterObservation, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	err := e.run(ctx, "save_water", []string{pointKey(w.PointID)}, func(tx storage.Tx) error {
		if err := requirePoint(ctx, tx, w.PointID); err != nil {
			return err
		}
		w.SyncStatus = types.SyncDirty

		existing, err := tx.WaterObservations().Find(ctx, storage.WaterPoint, w.PointID)
		switch {
		case err == nil:
			w.ID = existing.ID
			w.WaterID = existing.WaterID
			return tx.WaterObservations().Update(ctx, &w)
		case types.IsNotFound(err):
			id, err := e.newID(ctx, PrefixWater, idExists(tx.WaterObservations(), storage.WaterKey))
			if err != nil {
				return err
			}
			w.ID = 0
			w.WaterID = id
			return tx.WaterObservations().Insert(ctx, &w)
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWaterObservation returns the first water level stored for a point
func (e *Engine) GetWaterObservation(ctx context.Context, pointID string) (*types.WaterObservation, error) {
	return e.store.WaterObservations().Find(ctx, storage.WaterPoint, pointID)
}

// SaveMethod creates or replaces the method of one category for a point
func (e *Engine) SaveMethod(ctx context.Context, m types.Method) (*types.Method, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	err := e.run(ctx, "save_method", []string{pointKey(m.PointID)}, func(tx storage.Tx) error {
		if err := requirePoint(ctx, tx, m.PointID); err != nil {
			return err
		}
		m.SyncStatus = types.SyncDirty

		methods, err := tx.Methods().FindAll(ctx, storage.MethodPoint, m.PointID)
		if err != nil {
			return err
		}
		for _, existing := range methods {
			if existing.Method == m.Method {
				m.ID = existing.ID
				m.MethodID = existing.MethodID
				return tx.Methods().Update(ctx, &m)
			}
		}

		id, err := e.newID(ctx, PrefixMethod, idExists(tx.Methods(), storage.MethodKey))
		if err != nil {
			return err
		}
		m.ID = 0
		m.MethodID = id
		return tx.Methods().Insert(ctx, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMethods returns the methods of a point
func (e *Engine) ListMethods(ctx context.Context, pointID string) ([]*types.Method, error) {
	return e.store.Methods().FindAll(ctx, storage.MethodPoint, pointID)
}
