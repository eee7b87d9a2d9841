package cascade

import (
	"github.com/dshills/geolog-mcp/internal/geotech"
	"github.com/dshills/geolog-mcp/pkg/types"
)

// RenameResult reports the rows rewritten by a rename, per table
type RenameResult struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Updated map[string]int `json:"updated"`
}

// DeleteResult reports removed rows per table and how many ordinals shifted
type DeleteResult struct {
	Deleted    map[string]int `json:"deleted"`
	Renumbered int            `json:"renumbered"`
}

// SyncResult reports the rows marked synced, per table
type SyncResult struct {
	Updated map[string]int `json:"updated"`
}

// CoreResult carries a stored core and its advisory findings
type CoreResult struct {
	Core     *types.Core `json:"core"`
	Warnings []string    `json:"warnings,omitempty"`
}

// StrengthResult carries the stored labels and their derived indices
type StrengthResult struct {
	StrengthWeathering *types.StrengthWeathering `json:"strength_weathering"`
	geotech.Indices
}

// SampleResult carries a stored sample and its derived stratum
type SampleResult struct {
	Sample *types.Sample      `json:"sample"`
	NValue string             `json:"n_value"`
	Soil   *types.SoilProfile `json:"soil_profile,omitempty"`
}

// HydraulicResult carries a stored permeability test and its derived stratum
type HydraulicResult struct {
	Hydraulic *types.HydraulicCond `json:"hydraulic_cond"`
	Soil      *types.SoilProfile   `json:"soil_profile,omitempty"`
}

// DirtySummary lists unsynced rows per table and the keys they belong to
type DirtySummary struct {
	Tables   map[string]int `json:"tables"`
	Projects []string       `json:"projects"`
	Points   []string       `json:"points"`
}
