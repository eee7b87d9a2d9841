package cascade

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// RenameProject changes a project identifier. Points follow it.
type RenameProject struct {
	From string
	To   string
}

// RenamePoint changes a point identifier within its project. Every child row
// with point_id = From follows it.
type RenamePoint struct {
	ProjectID string
	From      string
	To        string
}

func checkRename(from, to string) error {
	if strings.TrimSpace(from) == "" {
		return types.ValueError("from", "is required")
	}
	if strings.TrimSpace(to) == "" {
		return types.ValueError("to", "is required")
	}
	return nil
}

// CreateProject stores a new project. The identifier must be unused.
func (e *Engine) CreateProject(ctx context.Context, p types.Project) (*types.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	err := e.run(ctx, "create_project", []string{projectKey(p.ProjectID)}, func(tx storage.Tx) error {
		n, err := tx.Projects().Count(ctx, storage.ProjectKey, p.ProjectID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("project %q: %w", p.ProjectID, types.ErrDuplicateIdentifier)
		}
		p.ID = 0
		p.SyncStatus = types.SyncDirty
		return tx.Projects().Insert(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("project created", "project_id", p.ProjectID)
	return &p, nil
}

// GetProject loads a project by identifier
func (e *Engine) GetProject(ctx context.Context, projectID string) (*types.Project, error) {
	return e.store.Projects().Find(ctx, storage.ProjectKey, projectID)
}

// ListProjects returns every project in creation order
func (e *Engine) ListProjects(ctx context.Context) ([]*types.Project, error) {
	return e.store.Projects().List(ctx)
}

// UpdateProject rewrites the descriptive fields of a project. The identifier
// is changed only through RenameProject.
func (e *Engine) UpdateProject(ctx context.Context, p types.Project) (*types.Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	err := e.run(ctx, "update_project", []string{projectKey(p.ProjectID)}, func(tx storage.Tx) error {
		current, err := tx.Projects().Find(ctx, storage.ProjectKey, p.ProjectID)
		if err != nil {
			return err
		}
		p.ID = current.ID
		p.SyncStatus = types.SyncDirty
		return tx.Projects().Update(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RenameProject moves a project and its points to a new identifier. A
// collision with another project fails with ErrDuplicateIdentifier and
// nothing is written.
func (e *Engine) RenameProject(ctx context.Context, cmd RenameProject) (*RenameResult, error) {
	if err := checkRename(cmd.From, cmd.To); err != nil {
		return nil, err
	}
	res := &RenameResult{From: cmd.From, To: cmd.To, Updated: map[string]int{}}

	keys := []string{projectKey(cmd.From), projectKey(cmd.To)}
	err := e.run(ctx, "rename_project", keys, func(tx storage.Tx) error {
		project, err := tx.Projects().Find(ctx, storage.ProjectKey, cmd.From)
		if err != nil {
			return err
		}
		if cmd.From == cmd.To {
			return nil
		}

		n, err := tx.Projects().Count(ctx, storage.ProjectKey, cmd.To)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("project %q: %w", cmd.To, types.ErrDuplicateIdentifier)
		}

		if err := tx.Projects().UpdateByID(ctx, project.ID, storage.Set(storage.ProjectKey, cmd.To)); err != nil {
			return err
		}
		res.Updated[tableProjects] = 1

		n, err = tx.Points().UpdateWhere(ctx, storage.PointProject, cmd.From, storage.Set(storage.PointProject, cmd.To))
		if err != nil {
			return err
		}
		res.Updated[tablePoints] = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("project renamed", "from", cmd.From, "to", cmd.To, "points", res.Updated[tablePoints])
	return res, nil
}

// DeleteProject removes a project, its points and every row under them
func (e *Engine) DeleteProject(ctx context.Context, projectID string) (*DeleteResult, error) {
	res := &DeleteResult{Deleted: map[string]int{}}
	err := e.run(ctx, "delete_project", []string{projectKey(projectID)}, func(tx storage.Tx) error {
		project, err := tx.Projects().Find(ctx, storage.ProjectKey, projectID)
		if err != nil {
			return err
		}
		points, err := tx.Points().FindAll(ctx, storage.PointProject, projectID)
		if err != nil {
			return err
		}
		for _, p := range points {
			if err := e.deletePointRows(ctx, tx, p, res); err != nil {
				return err
			}
		}
		if err := tx.Projects().DeleteByID(ctx, project.ID); err != nil {
			return err
		}
		res.Deleted[tableProjects] = 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("project deleted", "project_id", projectID, "points", res.Deleted[tablePoints])
	return res, nil
}

// CreatePoint stores a new point. The project must exist and the point
// identifier must be unused within it.
func (e *Engine) CreatePoint(ctx context.Context, p types.Point) (*types.Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	keys := []string{projectKey(p.ProjectID), pointKey(p.PointID)}
	err := e.run(ctx, "create_point", keys, func(tx storage.Tx) error {
		n, err := tx.Projects().Count(ctx, storage.ProjectKey, p.ProjectID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("project %q: %w", p.ProjectID, types.ErrRecordNotFound)
		}
		if _, err := findPoint(ctx, tx, p.ProjectID, p.PointID); err == nil {
			return fmt.Errorf("point %q in project %q: %w", p.PointID, p.ProjectID, types.ErrDuplicateIdentifier)
		} else if !types.IsNotFound(err) {
			return err
		}

		p.ID = 0
		p.SyncStatus = types.SyncDirty
		return tx.Points().Insert(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("point created", "project_id", p.ProjectID, "point_id", p.PointID)
	return &p, nil
}

// GetPoint loads a point of a project
func (e *Engine) GetPoint(ctx context.Context, projectID, pointID string) (*types.Point, error) {
	return findPoint(ctx, e.store, projectID, pointID)
}

// ListPoints returns the points of a project in creation order
func (e *Engine) ListPoints(ctx context.Context, projectID string) ([]*types.Point, error) {
	return e.store.Points().FindAll(ctx, storage.PointProject, projectID)
}

// UpdatePoint rewrites the descriptive fields of a point. Identifiers change
// only through RenamePoint.
func (e *Engine) UpdatePoint(ctx context.Context, p types.Point) (*types.Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	keys := []string{projectKey(p.ProjectID), pointKey(p.PointID)}
	err := e.run(ctx, "update_point", keys, func(tx storage.Tx) error {
		current, err := findPoint(ctx, tx, p.ProjectID, p.PointID)
		if err != nil {
			return err
		}
		p.ID = current.ID
		p.SyncStatus = types.SyncDirty
		return tx.Points().Update(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RenamePoint moves a point and every child row to a new identifier. The
// uniqueness check is scoped to the point's project.
func (e *Engine) RenamePoint(ctx context.Context, cmd RenamePoint) (*RenameResult, error) {
	if err := checkRename(cmd.From, cmd.To); err != nil {
		return nil, err
	}
	res := &RenameResult{From: cmd.From, To: cmd.To, Updated: map[string]int{}}

	keys := []string{projectKey(cmd.ProjectID), pointKey(cmd.From), pointKey(cmd.To)}
	err := e.run(ctx, "rename_point", keys, func(tx storage.Tx) error {
		point, err := findPoint(ctx, tx, cmd.ProjectID, cmd.From)
		if err != nil {
			return err
		}
		if cmd.From == cmd.To {
			return nil
		}

		if _, err := findPoint(ctx, tx, cmd.ProjectID, cmd.To); err == nil {
			return fmt.Errorf("point %q in project %q: %w", cmd.To, cmd.ProjectID, types.ErrDuplicateIdentifier)
		} else if !types.IsNotFound(err) {
			return err
		}

		if err := tx.Points().UpdateByID(ctx, point.ID, storage.Set(storage.PointKey, cmd.To)); err != nil {
			return err
		}
		res.Updated[tablePoints] = 1

		for _, child := range pointChildren {
			n, err := child.rename(ctx, tx, cmd.From, cmd.To)
			if err != nil {
				return err
			}
			res.Updated[child.name] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("point renamed", "project_id", cmd.ProjectID, "from", cmd.From, "to", cmd.To, "updated", res.Updated)
	return res, nil
}

// DeletePoint removes a point and every row under it
func (e *Engine) DeletePoint(ctx context.Context, projectID, pointID string) (*DeleteResult, error) {
	res := &DeleteResult{Deleted: map[string]int{}}
	keys := []string{projectKey(projectID), pointKey(pointID)}
	err := e.run(ctx, "delete_point", keys, func(tx storage.Tx) error {
		point, err := findPoint(ctx, tx, projectID, pointID)
		if err != nil {
			return err
		}
		return e.deletePointRows(ctx, tx, point, res)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("point deleted", "project_id", projectID, "point_id", pointID, "deleted", res.Deleted)
	return res, nil
}

// deletePointRows removes the point row and its children. Children carry
// only point_id, so when another project holds a point with the same
// identifier they cannot be attributed and are kept.
func (e *Engine) deletePointRows(ctx context.Context, tx storage.Tx, point *types.Point, res *DeleteResult) error {
	same, err := tx.Points().Count(ctx, storage.PointKey, point.PointID)
	if err != nil {
		return err
	}

	if same > 1 {
		e.log.Warn("point id shared across projects, children kept",
			"point_id", point.PointID, "project_id", point.ProjectID)
	} else {
		cores, err := coreIDs(ctx, tx, point.PointID)
		if err != nil {
			return err
		}
		for _, coreID := range cores {
			n, err := tx.StrengthWeathering().DeleteWhere(ctx, storage.StrengthCore, coreID)
			if err != nil {
				return err
			}
			res.Deleted[tableStrength] += n
		}
		for _, child := range pointChildren {
			n, err := child.remove(ctx, tx, point.PointID)
			if err != nil {
				return err
			}
			res.Deleted[child.name] += n
		}
	}

	if err := tx.Points().DeleteByID(ctx, point.ID); err != nil {
		return err
	}
	res.Deleted[tablePoints]++
	return nil
}
