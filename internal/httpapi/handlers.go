package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/geolog-mcp/internal/cascade"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// RenameRequest is the body of the rename endpoints
type RenameRequest struct {
	To string `json:"to"`
}

func (s *Server) projectRoutes(r chi.Router) {
	e := s.engine
	projectID := func(p *types.Project) *string { return &p.ProjectID }

	r.Get("/projects", func(w http.ResponseWriter, r *http.Request) {
		out, err := e.ListProjects(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	})
	r.Post("/projects", withBody(s, http.StatusCreated, nil, e.CreateProject))

	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Get("/", withParam(s, "projectID", e.GetProject))
		r.Put("/", withBody(s, http.StatusOK, pathInto("projectID", projectID), e.UpdateProject))
		r.Delete("/", withParam(s, "projectID", e.DeleteProject))
		r.Post("/rename", s.renameProject)
		r.Post("/sync", s.markSynced)
		r.Get("/report", withParam(s, "projectID", s.reports.Project))

		r.Get("/points", withParam(s, "projectID", e.ListPoints))
		r.Post("/points", withBody(s, http.StatusCreated,
			pathInto("projectID", func(p *types.Point) *string { return &p.ProjectID }), e.CreatePoint))

		r.Route("/points/{pointID}", func(r chi.Router) {
			r.Get("/", withPoint(s, e.GetPoint))
			r.Put("/", withBody(s, http.StatusOK, bindPoint, e.UpdatePoint))
			r.Delete("/", withPoint(s, e.DeletePoint))
			r.Post("/rename", s.renamePoint)
			r.Post("/sync", s.markSynced)
			r.Get("/report", withPoint(s, s.reports.Point))
		})
	})
}

// records mounts the routes of one point child table:
//
//	GET  /points/{pointID}/{name}  list
//	POST /points/{pointID}/{name}  create
//	PUT  /{name}/{id}              update
//	DELETE /{name}/{id}            delete
type records[T, R any] struct {
	name   string
	point  func(*T) *string
	key    func(*T) *string
	list   func(context.Context, string) ([]*T, error)
	create func(context.Context, T) (R, error)
	update func(context.Context, T) (R, error)
	remove func(context.Context, string) (*cascade.DeleteResult, error)
}

func (rec records[T, R]) mount(s *Server, r chi.Router) {
	r.Get("/points/{pointID}/"+rec.name, withParam(s, "pointID", rec.list))
	r.Post("/points/{pointID}/"+rec.name, withBody(s, http.StatusCreated, pathInto("pointID", rec.point), rec.create))
	r.Put("/"+rec.name+"/{id}", withBody(s, http.StatusOK, pathInto("id", rec.key), rec.update))
	r.Delete("/"+rec.name+"/{id}", withParam(s, "id", rec.remove))
}

func (s *Server) recordRoutes(r chi.Router) {
	e := s.engine

	records[types.Core, *cascade.CoreResult]{
		name:   "cores",
		point:  func(c *types.Core) *string { return &c.PointID },
		key:    func(c *types.Core) *string { return &c.CoreID },
		list:   e.ListCores,
		create: e.CreateCore,
		update: e.UpdateCore,
		remove: e.DeleteCore,
	}.mount(s, r)
	r.Get("/cores/{id}", withParam(s, "id", e.GetCore))
	r.Get("/cores/{id}/strength", withParam(s, "id", e.GetStrengthWeathering))
	r.Put("/cores/{id}/strength", withBody(s, http.StatusOK,
		pathInto("id", func(sw *types.StrengthWeathering) *string { return &sw.CoreID }), e.SaveStrengthWeathering))

	records[types.Sample, *cascade.SampleResult]{
		name:   "samples",
		point:  func(v *types.Sample) *string { return &v.PointID },
		key:    func(v *types.Sample) *string { return &v.SampleID },
		list:   e.ListSamples,
		create: e.CreateSample,
		update: e.UpdateSample,
		remove: e.DeleteSample,
	}.mount(s, r)
	r.Get("/samples/{id}", withParam(s, "id", e.GetSample))

	records[types.HydraulicCond, *cascade.HydraulicResult]{
		name:   "hydraulic",
		point:  func(v *types.HydraulicCond) *string { return &v.PointID },
		key:    func(v *types.HydraulicCond) *string { return &v.HydraulicID },
		list:   e.ListHydraulic,
		create: e.CreateHydraulic,
		update: e.UpdateHydraulic,
		remove: e.DeleteHydraulic,
	}.mount(s, r)
	r.Get("/hydraulic/{id}", withParam(s, "id", e.GetHydraulic))

	records[types.Discontinuity, *types.Discontinuity]{
		name:   "discontinuities",
		point:  func(v *types.Discontinuity) *string { return &v.PointID },
		key:    func(v *types.Discontinuity) *string { return &v.DiscontinuityID },
		list:   e.ListDiscontinuities,
		create: e.CreateDiscontinuity,
		update: e.UpdateDiscontinuity,
		remove: e.DeleteDiscontinuity,
	}.mount(s, r)

	records[types.CoreCondition, *types.CoreCondition]{
		name:   "conditions",
		point:  func(v *types.CoreCondition) *string { return &v.PointID },
		key:    func(v *types.CoreCondition) *string { return &v.CoreConditionID },
		list:   e.ListCoreConditions,
		create: e.CreateCoreCondition,
		update: e.UpdateCoreCondition,
		remove: e.DeleteCoreCondition,
	}.mount(s, r)

	records[types.Piezometer, *types.Piezometer]{
		name:   "piezometers",
		point:  func(v *types.Piezometer) *string { return &v.PointID },
		key:    func(v *types.Piezometer) *string { return &v.PiezometerID },
		list:   e.ListPiezometers,
		create: e.CreatePiezometer,
		update: e.UpdatePiezometer,
		remove: e.DeletePiezometer,
	}.mount(s, r)

	records[types.SoilProfile, *types.SoilProfile]{
		name:   "soil",
		point:  func(v *types.SoilProfile) *string { return &v.PointID },
		key:    func(v *types.SoilProfile) *string { return &v.SoilID },
		list:   e.ListSoilProfiles,
		create: e.CreateSoilProfile,
		update: e.UpdateSoilProfile,
		remove: e.DeleteSoilProfile,
	}.mount(s, r)

	r.Get("/points/{pointID}/water", withParam(s, "pointID", e.GetWaterObservation))
	r.Put("/points/{pointID}/water", withBody(s, http.StatusOK,
		pathInto("pointID", func(w *types.WaterObservation) *string { return &w.PointID }), e.SaveWaterObservation))
	r.Get("/points/{pointID}/methods", withParam(s, "pointID", e.ListMethods))
	r.Put("/points/{pointID}/methods", withBody(s, http.StatusOK,
		pathInto("pointID", func(m *types.Method) *string { return &m.PointID }), e.SaveMethod))
}

func bindPoint(r *http.Request, p *types.Point) {
	p.ProjectID = chi.URLParam(r, "projectID")
	p.PointID = chi.URLParam(r, "pointID")
}

// withPoint calls fn with the project and point path values
func withPoint[R any](s *Server, fn func(context.Context, string, string) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "pointID"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func decodeRename(w http.ResponseWriter, r *http.Request) (RenameRequest, bool) {
	var req RenameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

// renameProject handles POST /v1/projects/{projectID}/rename
func (s *Server) renameProject(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRename(w, r)
	if !ok {
		return
	}
	res, err := s.engine.RenameProject(r.Context(), cascade.RenameProject{
		From: chi.URLParam(r, "projectID"),
		To:   req.To,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// renamePoint handles POST /v1/projects/{projectID}/points/{pointID}/rename
func (s *Server) renamePoint(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRename(w, r)
	if !ok {
		return
	}
	res, err := s.engine.RenamePoint(r.Context(), cascade.RenamePoint{
		ProjectID: chi.URLParam(r, "projectID"),
		From:      chi.URLParam(r, "pointID"),
		To:        req.To,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// markSynced handles the project and point sync endpoints. pointID is empty
// on the project route.
func (s *Server) markSynced(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.MarkSynced(r.Context(), cascade.MarkSynced{
		ProjectID: chi.URLParam(r, "projectID"),
		PointID:   chi.URLParam(r, "pointID"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// dirtySummary handles GET /v1/dirty
func (s *Server) dirtySummary(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.DirtySummary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
