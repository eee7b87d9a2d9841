package report

import (
	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// CoreRow is a run with its recovery percentages and strength indices
type CoreRow struct {
	*types.Core
	Length             float64                   `json:"length"`
	TCRPercent         int                       `json:"tcr_percent"`
	RQDPercent         int                       `json:"rqd_percent"`
	StrengthWeathering *types.StrengthWeathering `json:"strength_weathering,omitempty"`
	geotech.Indices
	Warnings []string `json:"warnings,omitempty"`
}

// SampleRow is a resistance test with its N-value. NValue is "Refusal" when
// Refusal is set.
type SampleRow struct {
	*types.Sample
	NValue  string `json:"n_value"`
	Refusal bool   `json:"refusal"`
}

// HydraulicRow is a permeability test with its display class
type HydraulicRow struct {
	*types.HydraulicCond
	Permeability  string `json:"permeability"`
	VeryPermeable bool   `json:"very_permeable"`
}

// PointReport is every row of a point, each table sorted by depth
type PointReport struct {
	Point           *types.Point            `json:"point"`
	Cores           []CoreRow               `json:"cores"`
	Discontinuities []*types.Discontinuity  `json:"discontinuities"`
	CoreConditions  []*types.CoreCondition  `json:"core_conditions"`
	Samples         []SampleRow             `json:"samples"`
	Hydraulic       []HydraulicRow          `json:"hydraulic_cond"`
	SoilProfiles    []*types.SoilProfile    `json:"soil_profiles"`
	Piezometers     []*types.Piezometer     `json:"piezometers"`
	Water           *types.WaterObservation `json:"water_observation,omitempty"`
	Methods         []*types.Method         `json:"methods"`
}

// ProjectReport is a project with the report of each of its points
type ProjectReport struct {
	Project *types.Project `json:"project"`
	Points  []*PointReport `json:"points"`
}
