package cascade

import (
	"context"

	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// Table labels used in result counts
const (
	tableProjects        = "projects"
	tablePoints          = "points"
	tableCores           = "cores"
	tableStrength        = "strength_weathering"
	tableDiscontinuities = "discontinuities"
	tableConditions      = "core_conditions"
	tableSamples         = "samples"
	tableHydraulic       = "hydraulic_cond"
	tableSoil            = "soil_profiles"
	tablePiezometers     = "piezometers"
	tableWater           = "water_observations"
	tableMethods         = "methods"
)

// pointChild is one table whose rows belong to a point through point_id
type pointChild struct {
	name       string
	rename     func(ctx context.Context, r storage.Repositories, from, to string) (int, error)
	remove     func(ctx context.Context, r storage.Repositories, pointID string) (int, error)
	markSynced func(ctx context.Context, r storage.Repositories, pointID string) (int, error)
	dirty      func(ctx context.Context, r storage.Repositories) ([]string, error)
}

func childOf[T any](
	name string,
	repo func(storage.Repositories) storage.Repository[T],
	point, sync storage.Field[T],
	pointOf func(*T) string,
) pointChild {
	return pointChild{
		name: name,
		rename: func(ctx context.Context, r storage.Repositories, from, to string) (int, error) {
			return repo(r).UpdateWhere(ctx, point, from, storage.Set(point, to))
		},
		remove: func(ctx context.Context, r storage.Repositories, pointID string) (int, error) {
			return repo(r).DeleteWhere(ctx, point, pointID)
		},
		markSynced: func(ctx context.Context, r storage.Repositories, pointID string) (int, error) {
			return repo(r).UpdateWhere(ctx, point, pointID, storage.Set(sync, types.SyncClean))
		},
		dirty: func(ctx context.Context, r storage.Repositories) ([]string, error) {
			rows, err := repo(r).FindAll(ctx, sync, types.SyncDirty)
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(rows))
			for i, row := range rows {
				ids[i] = pointOf(row)
			}
			return ids, nil
		},
	}
}

// pointChildren lists every table keyed by point_id
var pointChildren = []pointChild{
	childOf(tableCores, storage.Repositories.Cores, storage.CorePoint, storage.CoreSync,
		func(c *types.Core) string { return c.PointID }),
	childOf(tableDiscontinuities, storage.Repositories.Discontinuities, storage.DiscontinuityPoint, storage.DiscontinuitySync,
		func(d *types.Discontinuity) string { return d.PointID }),
	childOf(tableConditions, storage.Repositories.CoreConditions, storage.ConditionPoint, storage.ConditionSync,
		func(c *types.CoreCondition) string { return c.PointID }),
	childOf(tableSamples, storage.Repositories.Samples, storage.SamplePoint, storage.SampleSync,
		func(s *types.Sample) string { return s.PointID }),
	childOf(tableHydraulic, storage.Repositories.HydraulicConds, storage.HydraulicPoint, storage.HydraulicSync,
		func(h *types.HydraulicCond) string { return h.PointID }),
	childOf(tablePiezometers, storage.Repositories.Piezometers, storage.PiezometerPoint, storage.PiezometerSync,
		func(p *types.Piezometer) string { return p.PointID }),
	childOf(tableSoil, storage.Repositories.SoilProfiles, storage.SoilPoint, storage.SoilSync,
		func(s *types.SoilProfile) string { return s.PointID }),
	childOf(tableWater, storage.Repositories.WaterObservations, storage.WaterPoint, storage.WaterSync,
		func(w *types.WaterObservation) string { return w.PointID }),
	childOf(tableMethods, storage.Repositories.Methods, storage.MethodPoint, storage.MethodSync,
		func(m *types.Method) string { return m.PointID }),
}

// coreIDs lists the cores of a point, the keys of its strength rows
func coreIDs(ctx context.Context, r storage.Repositories, pointID string) ([]string, error) {
	cores, err := r.Cores().FindAll(ctx, storage.CorePoint, pointID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(cores))
	for i, c := range cores {
		ids[i] = c.CoreID
	}
	return ids, nil
}
