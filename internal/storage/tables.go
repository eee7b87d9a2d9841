package storage

import (
	"database/sql"

	"github.com/dshills/geolog-mcp/pkg/types"
)

// Indexed fields usable in lookups and partial updates

var (
	ProjectKey  = Field[types.Project]{"project_id"}
	ProjectSync = Field[types.Project]{syncColumn}

	PointKey     = Field[types.Point]{"point_id"}
	PointProject = Field[types.Point]{"project_id"}
	PointSync    = Field[types.Point]{syncColumn}

	CoreKey       = Field[types.Core]{"core_id"}
	CorePoint     = Field[types.Core]{"point_id"}
	CoreRunNumber = Field[types.Core]{"run_number"}
	CoreSync      = Field[types.Core]{syncColumn}

	StrengthKey  = Field[types.StrengthWeathering]{"strength_id"}
	StrengthCore = Field[types.StrengthWeathering]{"core_id"}
	StrengthSync = Field[types.StrengthWeathering]{syncColumn}

	DiscontinuityKey   = Field[types.Discontinuity]{"discontinuity_id"}
	DiscontinuityPoint = Field[types.Discontinuity]{"point_id"}
	DiscontinuitySync  = Field[types.Discontinuity]{syncColumn}

	ConditionKey   = Field[types.CoreCondition]{"core_condition_id"}
	ConditionPoint = Field[types.CoreCondition]{"point_id"}
	ConditionSync  = Field[types.CoreCondition]{syncColumn}

	SampleKey    = Field[types.Sample]{"sample_id"}
	SamplePoint  = Field[types.Sample]{"point_id"}
	SampleNumber = Field[types.Sample]{"number"}
	SampleSync   = Field[types.Sample]{syncColumn}

	HydraulicKey    = Field[types.HydraulicCond]{"hydraulic_id"}
	HydraulicPoint  = Field[types.HydraulicCond]{"point_id"}
	HydraulicNumber = Field[types.HydraulicCond]{"number"}
	HydraulicSync   = Field[types.HydraulicCond]{syncColumn}

	SoilKey             = Field[types.SoilProfile]{"soil_id"}
	SoilPoint           = Field[types.SoilProfile]{"point_id"}
	SoilDepth           = Field[types.SoilProfile]{"depth"}
	SoilDescription     = Field[types.SoilProfile]{"description"}
	SoilLinkedSample    = Field[types.SoilProfile]{"linked_sample_id"}
	SoilLinkedHydraulic = Field[types.SoilProfile]{"linked_hydraulic_id"}
	SoilSync            = Field[types.SoilProfile]{syncColumn}

	PiezometerKey   = Field[types.Piezometer]{"piezometer_id"}
	PiezometerPoint = Field[types.Piezometer]{"point_id"}
	PiezometerSync  = Field[types.Piezometer]{syncColumn}

	WaterKey   = Field[types.WaterObservation]{"water_id"}
	WaterPoint = Field[types.WaterObservation]{"point_id"}
	WaterSync  = Field[types.WaterObservation]{syncColumn}

	MethodKey   = Field[types.Method]{"method_id"}
	MethodPoint = Field[types.Method]{"point_id"}
	MethodSync  = Field[types.Method]{syncColumn}
)

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

var projectTable = &tableSpec[types.Project]{
	name: "projects",
	columns: []string{
		"project_id", "title", "client", "location", "depth_log_page", "water_unit_w",
		"input_units", "output_units", "shear_strength_max", "water_content_max",
		"k_scale_min", "k_scale_increment", "draft_stamp", "coeff_of_consol_factor",
		"dynamic_max", "chamber_max", "becker_max", syncColumn,
	},
	values: func(p *types.Project) []interface{} {
		return []interface{}{
			p.ProjectID, p.Title, p.Client, p.Location, p.DepthLogPage, p.WaterUnitW,
			p.InputUnits, p.OutputUnits, p.ShearStrengthMax, p.WaterContentMax,
			p.KScaleMin, p.KScaleIncrement, p.DraftStamp, p.CoeffOfConsolFactor,
			p.DynamicMax, p.ChamberMax, p.BeckerMax, p.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.Project, error) {
		var p types.Project
		err := s.Scan(&p.ID,
			&p.ProjectID, &p.Title, &p.Client, &p.Location, &p.DepthLogPage, &p.WaterUnitW,
			&p.InputUnits, &p.OutputUnits, &p.ShearStrengthMax, &p.WaterContentMax,
			&p.KScaleMin, &p.KScaleIncrement, &p.DraftStamp, &p.CoeffOfConsolFactor,
			&p.DynamicMax, &p.ChamberMax, &p.BeckerMax, &p.SyncStatus,
		)
		return &p, err
	},
	id: func(p *types.Project) *int64 { return &p.ID },
}

var pointTable = &tableSpec[types.Point]{
	name: "points",
	columns: []string{
		"point_id", "project_id", "hole_depth", "boring_date", "soil_drilling_contractor",
		"elevation", "plunge", "end_soil_depth", "start_rock_depth", "top_depth_rock",
		"rock_date", "rock_drilling_contractor", "rock_drilling_rig", "depth_log_page",
		"borehole_type", "north", "east", "surveyed", "coordinate_system", "zone", syncColumn,
	},
	values: func(p *types.Point) []interface{} {
		return []interface{}{
			p.PointID, p.ProjectID, p.HoleDepth, p.BoringDate, p.SoilDrillingContractor,
			p.Elevation, p.Plunge, p.EndSoilDepth, p.StartRockDepth, p.TopDepthRock,
			p.RockDate, p.RockDrillingContractor, p.RockDrillingRig, p.DepthLogPage,
			p.BoreholeType, p.North, p.East, p.Surveyed, p.CoordinateSystem, p.Zone, p.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.Point, error) {
		var p types.Point
		err := s.Scan(&p.ID,
			&p.PointID, &p.ProjectID, &p.HoleDepth, &p.BoringDate, &p.SoilDrillingContractor,
			&p.Elevation, &p.Plunge, &p.EndSoilDepth, &p.StartRockDepth, &p.TopDepthRock,
			&p.RockDate, &p.RockDrillingContractor, &p.RockDrillingRig, &p.DepthLogPage,
			&p.BoreholeType, &p.North, &p.East, &p.Surveyed, &p.CoordinateSystem, &p.Zone, &p.SyncStatus,
		)
		return &p, err
	},
	id: func(p *types.Point) *int64 { return &p.ID },
}

var coreTable = &tableSpec[types.Core]{
	name: "cores",
	columns: []string{
		"core_id", "point_id", "depth", "bottom", "run_number",
		"tcr_length", "rqd_length", "jn", "fracture_index", syncColumn,
	},
	values: func(c *types.Core) []interface{} {
		return []interface{}{
			c.CoreID, c.PointID, c.Depth, c.Bottom, c.RunNumber,
			c.TCRLength, c.RQDLength, c.Jn, c.FractureIndex, c.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.Core, error) {
		var c types.Core
		err := s.Scan(&c.ID,
			&c.CoreID, &c.PointID, &c.Depth, &c.Bottom, &c.RunNumber,
			&c.TCRLength, &c.RQDLength, &c.Jn, &c.FractureIndex, &c.SyncStatus,
		)
		return &c, err
	},
	id: func(c *types.Core) *int64 { return &c.ID },
}

var strengthTable = &tableSpec[types.StrengthWeathering]{
	name: "strength_weathering",
	columns: []string{
		"strength_id", "core_id", "strength_v1", "strength_v2",
		"weathering_v1", "weathering_v2", syncColumn,
	},
	values: func(w *types.StrengthWeathering) []interface{} {
		return []interface{}{
			w.StrengthID, w.CoreID, w.StrengthV1, w.StrengthV2,
			w.WeatheringV1, w.WeatheringV2, w.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.StrengthWeathering, error) {
		var w types.StrengthWeathering
		err := s.Scan(&w.ID,
			&w.StrengthID, &w.CoreID, &w.StrengthV1, &w.StrengthV2,
			&w.WeatheringV1, &w.WeatheringV2, &w.SyncStatus,
		)
		return &w, err
	},
	id: func(w *types.StrengthWeathering) *int64 { return &w.ID },
}

var discontinuityTable = &tableSpec[types.Discontinuity]{
	name: "discontinuities",
	columns: []string{
		"discontinuity_id", "point_id", "depth", "type", "dip", "shape", "aperture",
		"roughness_rating", "weathering_rating", "jcr", "condition_discon",
		"jr_roughness", "ja_alteration", "jn_set", syncColumn,
	},
	values: func(d *types.Discontinuity) []interface{} {
		return []interface{}{
			d.DiscontinuityID, d.PointID, d.Depth, d.Type, d.Dip, d.Shape, d.Aperture,
			d.RoughnessRating, d.WeatheringRating, d.JCR, d.ConditionDiscon,
			d.JrRoughness, d.JaAlteration, d.JnSet, d.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.Discontinuity, error) {
		var d types.Discontinuity
		err := s.Scan(&d.ID,
			&d.DiscontinuityID, &d.PointID, &d.Depth, &d.Type, &d.Dip, &d.Shape, &d.Aperture,
			&d.RoughnessRating, &d.WeatheringRating, &d.JCR, &d.ConditionDiscon,
			&d.JrRoughness, &d.JaAlteration, &d.JnSet, &d.SyncStatus,
		)
		return &d, err
	},
	id: func(d *types.Discontinuity) *int64 { return &d.ID },
}

var conditionTable = &tableSpec[types.CoreCondition]{
	name:    "core_conditions",
	columns: []string{"core_condition_id", "point_id", "depth", "bottom", "type", syncColumn},
	values: func(c *types.CoreCondition) []interface{} {
		return []interface{}{c.CoreConditionID, c.PointID, c.Depth, c.Bottom, c.Type, c.SyncStatus}
	},
	scan: func(s scanner) (*types.CoreCondition, error) {
		var c types.CoreCondition
		err := s.Scan(&c.ID, &c.CoreConditionID, &c.PointID, &c.Depth, &c.Bottom, &c.Type, &c.SyncStatus)
		return &c, err
	},
	id: func(c *types.CoreCondition) *int64 { return &c.ID },
}

var sampleTable = &tableSpec[types.Sample]{
	name: "samples",
	columns: []string{
		"sample_id", "point_id", "depth", "bottom", "number", "type",
		"v_15", "v_30", "v_45", "sample_recobery", "blows_limit_depth", syncColumn,
	},
	values: func(r *types.Sample) []interface{} {
		return []interface{}{
			r.SampleID, r.PointID, r.Depth, r.Bottom, r.Number, r.Type,
			r.V15, r.V30, r.V45, r.SampleRecovery, r.BlowsLimitDepth, r.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.Sample, error) {
		var r types.Sample
		err := s.Scan(&r.ID,
			&r.SampleID, &r.PointID, &r.Depth, &r.Bottom, &r.Number, &r.Type,
			&r.V15, &r.V30, &r.V45, &r.SampleRecovery, &r.BlowsLimitDepth, &r.SyncStatus,
		)
		return &r, err
	},
	id: func(r *types.Sample) *int64 { return &r.ID },
}

var hydraulicTable = &tableSpec[types.HydraulicCond]{
	name:    "hydraulic_cond",
	columns: []string{"hydraulic_id", "point_id", "depth", "bottom", "number", "k", "k_check", syncColumn},
	values: func(h *types.HydraulicCond) []interface{} {
		return []interface{}{h.HydraulicID, h.PointID, h.Depth, h.Bottom, h.Number, h.K, h.Check, h.SyncStatus}
	},
	scan: func(s scanner) (*types.HydraulicCond, error) {
		var h types.HydraulicCond
		err := s.Scan(&h.ID, &h.HydraulicID, &h.PointID, &h.Depth, &h.Bottom, &h.Number, &h.K, &h.Check, &h.SyncStatus)
		return &h, err
	},
	id: func(h *types.HydraulicCond) *int64 { return &h.ID },
}

var soilTable = &tableSpec[types.SoilProfile]{
	name: "soil_profiles",
	columns: []string{
		"soil_id", "point_id", "depth", "bottom", "graphic", "description",
		"unit_summary", "linked_sample_id", "linked_hydraulic_id", syncColumn,
	},
	values: func(p *types.SoilProfile) []interface{} {
		return []interface{}{
			p.SoilID, p.PointID, p.Depth, nullFloat(p.Bottom), p.Graphic, p.Description,
			p.UnitSummary, nullString(p.LinkedSampleID), nullString(p.LinkedHydraulicID), p.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.SoilProfile, error) {
		var p types.SoilProfile
		var bottom sql.NullFloat64
		var sample, hydraulic sql.NullString
		err := s.Scan(&p.ID,
			&p.SoilID, &p.PointID, &p.Depth, &bottom, &p.Graphic, &p.Description,
			&p.UnitSummary, &sample, &hydraulic, &p.SyncStatus,
		)
		if err != nil {
			return nil, err
		}
		if bottom.Valid {
			p.Bottom = &bottom.Float64
		}
		p.LinkedSampleID = sample.String
		p.LinkedHydraulicID = hydraulic.String
		return &p, nil
	},
	id: func(p *types.SoilProfile) *int64 { return &p.ID },
}

var piezometerTable = &tableSpec[types.Piezometer]{
	name: "piezometers",
	columns: []string{
		"piezometer_id", "point_id", "depth", "bottom", "graphic", "description",
		"therm_node_num", "lines", "color", "name", "prof_piezo", syncColumn,
	},
	values: func(p *types.Piezometer) []interface{} {
		return []interface{}{
			p.PiezometerID, p.PointID, p.Depth, p.Bottom, p.Graphic, p.Description,
			p.ThermNodeNum, p.Lines, p.Color, p.Name, p.ProfPiezo, p.SyncStatus,
		}
	},
	scan: func(s scanner) (*types.Piezometer, error) {
		var p types.Piezometer
		err := s.Scan(&p.ID,
			&p.PiezometerID, &p.PointID, &p.Depth, &p.Bottom, &p.Graphic, &p.Description,
			&p.ThermNodeNum, &p.Lines, &p.Color, &p.Name, &p.ProfPiezo, &p.SyncStatus,
		)
		return &p, err
	},
	id: func(p *types.Piezometer) *int64 { return &p.ID },
}

var waterTable = &tableSpec[types.WaterObservation]{
	name:    "water_observations",
	columns: []string{"water_id", "point_id", "depth", "water_observation_date", syncColumn},
	values: func(w *types.WaterObservation) []interface{} {
		return []interface{}{w.WaterID, w.PointID, w.Depth, w.WaterObservationDate, w.SyncStatus}
	},
	scan: func(s scanner) (*types.WaterObservation, error) {
		var w types.WaterObservation
		err := s.Scan(&w.ID, &w.WaterID, &w.PointID, &w.Depth, &w.WaterObservationDate, &w.SyncStatus)
		return &w, err
	},
	id: func(w *types.WaterObservation) *int64 { return &w.ID },
}

var methodTable = &tableSpec[types.Method]{
	name:    "methods",
	columns: []string{"method_id", "point_id", "depth", "bottom", "method", "type", syncColumn},
	values: func(m *types.Method) []interface{} {
		return []interface{}{m.MethodID, m.PointID, m.Depth, m.Bottom, m.Method, m.Type, m.SyncStatus}
	},
	scan: func(s scanner) (*types.Method, error) {
		var m types.Method
		err := s.Scan(&m.ID, &m.MethodID, &m.PointID, &m.Depth, &m.Bottom, &m.Method, &m.Type, &m.SyncStatus)
		return &m, err
	},
	id: func(m *types.Method) *int64 { return &m.ID },
}
