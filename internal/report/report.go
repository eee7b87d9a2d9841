package report

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/internal/logger"
	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// DefaultDisplayThreshold classifies K >= 0.1 cm/s as very permeable in reports
const DefaultDisplayThreshold = 0.1

// DefaultWorkers bounds the point reports fetched at once for a project
const DefaultWorkers = 4

// Reporter assembles read-only views of points and projects
type Reporter struct {
	store   storage.Repositories
	display geotech.PermeabilityPolicy
	workers int
	log     *logger.Logger
}

// New creates a reporter. workers <= 0 uses DefaultWorkers.
func New(store storage.Repositories, display geotech.PermeabilityPolicy, workers int, log *logger.Logger) *Reporter {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Reporter{store: store, display: display, workers: workers, log: log}
}

// Point builds the report of one point. Every table is read concurrently and
// sorted by depth.
func (r *Reporter) Point(ctx context.Context, projectID, pointID string) (*PointReport, error) {
	point, err := r.findPoint(ctx, projectID, pointID)
	if err != nil {
		return nil, err
	}
	return r.build(ctx, point)
}

// Project builds the report of a project and all of its points
func (r *Reporter) Project(ctx context.Context, projectID string) (*ProjectReport, error) {
	start := time.Now()

	project, err := r.store.Projects().Find(ctx, storage.ProjectKey, projectID)
	if err != nil {
		return nil, err
	}
	points, err := r.store.Points().FindAll(ctx, storage.PointProject, projectID)
	if err != nil {
		return nil, err
	}

	out := &ProjectReport{Project: project, Points: make([]*PointReport, len(points))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, p := range points {
		g.Go(func() error {
			pr, err := r.build(gctx, p)
			if err != nil {
				return fmt.Errorf("point %s: %w", p.PointID, err)
			}
			out.Points[i] = pr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.Debug("project report built", "project_id", projectID, "points", len(points), "elapsed", time.Since(start))
	return out, nil
}

func (r *Reporter) findPoint(ctx context.Context, projectID, pointID string) (*types.Point, error) {
	points, err := r.store.Points().FindAll(ctx, storage.PointKey, pointID)
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

func (r *Reporter) build(ctx context.Context, point *types.Point) (*PointReport, error) {
	id := point.PointID
	out := &PointReport{Point: point}

	var (
		cores     []*types.Core
		strength  map[string]*types.StrengthWeathering
		samples   []*types.Sample
		hydraulic []*types.HydraulicCond
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cores, err = r.store.Cores().FindAll(gctx, storage.CorePoint, id)
		if err != nil {
			return err
		}
		strength = make(map[string]*types.StrengthWeathering, len(cores))
		for _, c := range cores {
			sw, err := r.store.StrengthWeathering().Find(gctx, storage.StrengthCore, c.CoreID)
			if types.IsNotFound(err) {
				continue
			}
			if err != nil {
				return err
			}
			strength[c.CoreID] = sw
		}
		return nil
	})
	g.Go(func() (err error) {
		out.Discontinuities, err = r.store.Discontinuities().FindAll(gctx, storage.DiscontinuityPoint, id)
		return err
	})
	g.Go(func() (err error) {
		out.CoreConditions, err = r.store.CoreConditions().FindAll(gctx, storage.ConditionPoint, id)
		return err
	})
	g.Go(func() (err error) {
		samples, err = r.store.Samples().FindAll(gctx, storage.SamplePoint, id)
		return err
	})
	g.Go(func() (err error) {
		hydraulic, err = r.store.HydraulicConds().FindAll(gctx, storage.HydraulicPoint, id)
		return err
	})
	g.Go(func() (err error) {
		out.SoilProfiles, err = r.store.SoilProfiles().FindAll(gctx, storage.SoilPoint, id)
		return err
	})
	g.Go(func() (err error) {
		out.Piezometers, err = r.store.Piezometers().FindAll(gctx, storage.PiezometerPoint, id)
		return err
	})
	g.Go(func() error {
		w, err := r.store.WaterObservations().Find(gctx, storage.WaterPoint, id)
		if types.IsNotFound(err) {
			return nil
		}
		out.Water = w
		return err
	})
	g.Go(func() (err error) {
		out.Methods, err = r.store.Methods().FindAll(gctx, storage.MethodPoint, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, c := range cores {
		out.Cores = append(out.Cores, coreRow(c, strength[c.CoreID]))
	}
	for _, s := range samples {
		out.Samples = append(out.Samples, sampleRow(s))
	}
	for _, h := range hydraulic {
		out.Hydraulic = append(out.Hydraulic, r.hydraulicRow(h))
	}

	byDepth(out.Cores, func(c CoreRow) float64 { return c.Depth })
	byDepth(out.Discontinuities, func(d *types.Discontinuity) float64 { return d.Depth })
	byDepth(out.CoreConditions, func(c *types.CoreCondition) float64 { return c.Depth })
	byDepth(out.Samples, func(s SampleRow) float64 { return s.Depth })
	byDepth(out.Hydraulic, func(h HydraulicRow) float64 { return h.Depth })
	byDepth(out.SoilProfiles, func(s *types.SoilProfile) float64 { return s.Depth })
	byDepth(out.Piezometers, func(p *types.Piezometer) float64 { return p.Depth })
	byDepth(out.Methods, func(m *types.Method) float64 { return m.Depth })
	return out, nil
}

// byDepth sorts rows by depth, keeping insertion order for equal depths
func byDepth[T any](rows []T, depth func(T) float64) {
	slices.SortStableFunc(rows, func(a, b T) int {
		return cmp.Compare(depth(a), depth(b))
	})
}

func coreRow(c *types.Core, sw *types.StrengthWeathering) CoreRow {
	length := c.Length()
	return CoreRow{
		Core:               c,
		Length:             length,
		TCRPercent:         geotech.RecoveryPercent(c.TCRLength, length),
		RQDPercent:         geotech.RecoveryPercent(c.RQDLength, length),
		StrengthWeathering: sw,
		Indices:            geotech.ComputeIndices(sw),
		Warnings:           c.Warnings(),
	}
}

func sampleRow(s *types.Sample) SampleRow {
	n := geotech.SampleN(s)
	return SampleRow{Sample: s, NValue: n.String(), Refusal: n.Refusal}
}

func (r *Reporter) hydraulicRow(h *types.HydraulicCond) HydraulicRow {
	return HydraulicRow{
		HydraulicCond: h,
		Permeability:  r.display.Class(h.K, h.Check),
		VeryPermeable: r.display.VeryPermeable(h.K, h.Check),
	}
}
