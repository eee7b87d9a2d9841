package cascade

import (
	"context"
	"slices"

	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// MarkSynced sets sync_status = 1 on exported rows. With PointID empty the
// whole project is marked.
type MarkSynced struct {
	ProjectID string
	PointID   string
}

// MarkSynced flags a point, or every point of a project, as exported. No
// data leaves the store; only the flag changes.
func (e *Engine) MarkSynced(ctx context.Context, cmd MarkSynced) (*SyncResult, error) {
	res := &SyncResult{Updated: map[string]int{}}
	keys := []string{projectKey(cmd.ProjectID)}
	if cmd.PointID != "" {
		keys = append(keys, pointKey(cmd.PointID))
	}

	err := e.run(ctx, "mark_synced", keys, func(tx storage.Tx) error {
		if cmd.PointID != "" {
			point, err := findPoint(ctx, tx, cmd.ProjectID, cmd.PointID)
			if err != nil {
				return err
			}
			return markPointSynced(ctx, tx, point, res)
		}

		project, err := tx.Projects().Find(ctx, storage.ProjectKey, cmd.ProjectID)
		if err != nil {
			return err
		}
		if err := tx.Projects().UpdateByID(ctx, project.ID, storage.Set(storage.ProjectSync, types.SyncClean)); err != nil {
			return err
		}
		res.Updated[tableProjects] = 1

		points, err := tx.Points().FindAll(ctx, storage.PointProject, cmd.ProjectID)
		if err != nil {
			return err
		}
		for _, p := range points {
			if err := markPointSynced(ctx, tx, p, res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("rows marked synced", "project_id", cmd.ProjectID, "point_id", cmd.PointID, "updated", res.Updated)
	return res, nil
}

func markPointSynced(ctx context.Context, tx storage.Tx, point *types.Point, res *SyncResult) error {
	if err := tx.Points().UpdateByID(ctx, point.ID, storage.Set(storage.PointSync, types.SyncClean)); err != nil {
		return err
	}
	res.Updated[tablePoints]++

	cores, err := coreIDs(ctx, tx, point.PointID)
	if err != nil {
		return err
	}
	for _, coreID := range cores {
		n, err := tx.StrengthWeathering().UpdateWhere(ctx, storage.StrengthCore, coreID,
			storage.Set(storage.StrengthSync, types.SyncClean))
		if err != nil {
			return err
		}
		res.Updated[tableStrength] += n
	}

	for _, child := range pointChildren {
		n, err := child.markSynced(ctx, tx, point.PointID)
		if err != nil {
			return err
		}
		res.Updated[child.name] += n
	}
	return nil
}

// DirtySummary counts unsynced rows per table and lists the projects and
// points that hold them.
func (e *Engine) DirtySummary(ctx context.Context) (*DirtySummary, error) {
	sum := &DirtySummary{Tables: map[string]int{}}

	projects, err := e.store.Projects().FindAll(ctx, storage.ProjectSync, types.SyncDirty)
	if err != nil {
		return nil, err
	}
	sum.Tables[tableProjects] = len(projects)
	for _, p := range projects {
		sum.Projects = append(sum.Projects, p.ProjectID)
	}

	points, err := e.store.Points().FindAll(ctx, storage.PointSync, types.SyncDirty)
	if err != nil {
		return nil, err
	}
	sum.Tables[tablePoints] = len(points)
	dirty := make([]string, 0, len(points))
	for _, p := range points {
		dirty = append(dirty, p.PointID)
	}

	for _, child := range pointChildren {
		ids, err := child.dirty(ctx, e.store)
		if err != nil {
			return nil, err
		}
		sum.Tables[child.name] = len(ids)
		dirty = append(dirty, ids...)
	}

	strength, err := e.store.StrengthWeathering().FindAll(ctx, storage.StrengthSync, types.SyncDirty)
	if err != nil {
		return nil, err
	}
	sum.Tables[tableStrength] = len(strength)
	for _, sw := range strength {
		core, err := e.store.Cores().Find(ctx, storage.CoreKey, sw.CoreID)
		if types.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		dirty = append(dirty, core.PointID)
	}

	slices.Sort(dirty)
	sum.Points = slices.Compact(dirty)
	return sum, nil
}
