package types

// Sync status values recorded on every row
const (
	SyncDirty = 0
	SyncClean = 1
)

// DefaultPlunge is the inclination of a vertical borehole
const DefaultPlunge = -90.0

// Project is the top-level container of boreholes
type Project struct {
	ID                  int64   `json:"id"`
	ProjectID           string  `json:"project_id"`
	Title               string  `json:"title"`
	Client              string  `json:"client"`
	Location            string  `json:"location"`
	DepthLogPage        float64 `json:"depth_log_page"`
	WaterUnitW          float64 `json:"water_unit_w"`
	InputUnits          string  `json:"input_units"`
	OutputUnits         string  `json:"output_units"`
	ShearStrengthMax    float64 `json:"shear_strength_max"`
	WaterContentMax     float64 `json:"water_content_max"`
	KScaleMin           float64 `json:"k_scale_min"`
	KScaleIncrement     float64 `json:"k_scale_increment"`
	DraftStamp          string  `json:"draft_stamp"`
	CoeffOfConsolFactor float64 `json:"coeff_of_consol_factor"`
	DynamicMax          float64 `json:"dynamic_max"`
	ChamberMax          float64 `json:"chamber_max"`
	BeckerMax           float64 `json:"becker_max"`
	SyncStatus          int     `json:"sync_status"`
}

// Point is a borehole. PointID is unique within its project.
type Point struct {
	ID                     int64   `json:"id"`
	PointID                string  `json:"point_id"`
	ProjectID              string  `json:"project_id"`
	HoleDepth              float64 `json:"hole_depth"`
	BoringDate             string  `json:"boring_date"`
	SoilDrillingContractor string  `json:"soil_drilling_contractor"`
	Elevation              float64 `json:"elevation"`
	Plunge                 float64 `json:"plunge"`
	EndSoilDepth           float64 `json:"end_soil_depth"`
	StartRockDepth         float64 `json:"start_rock_depth"`
	TopDepthRock           float64 `json:"top_depth_rock"`
	RockDate               string  `json:"rock_date"`
	RockDrillingContractor string  `json:"rock_drilling_contractor"`
	RockDrillingRig        string  `json:"rock_drilling_rig"`
	DepthLogPage           float64 `json:"depth_log_page"`
	BoreholeType           string  `json:"borehole_type"`
	North                  float64 `json:"north"`
	East                   float64 `json:"east"`
	Surveyed               bool    `json:"surveyed"`
	CoordinateSystem       string  `json:"coordinate_system"`
	Zone                   string  `json:"zone"`
	SyncStatus             int     `json:"sync_status"`
}

// Core is one drilling run
type Core struct {
	ID            int64   `json:"id"`
	CoreID        string  `json:"core_id"`
	PointID       string  `json:"point_id"`
	Depth         float64 `json:"depth"`
	Bottom        float64 `json:"bottom"`
	RunNumber     int     `json:"run_number"`
	TCRLength     float64 `json:"tcr_length"`
	RQDLength     float64 `json:"rqd_length"`
	Jn            float64 `json:"jn"`
	FractureIndex float64 `json:"fracture_index"`
	SyncStatus    int     `json:"sync_status"`
}

// Length returns the run length
func (c *Core) Length() float64 {
	return c.Bottom - c.Depth
}

// StrengthWeathering extends a Core with paired strength and weathering labels
type StrengthWeathering struct {
	ID           int64  `json:"id"`
	StrengthID   string `json:"strength_id"`
	CoreID       string `json:"core_id"`
	StrengthV1   string `json:"strength_v1"`
	StrengthV2   string `json:"strength_v2"`
	WeatheringV1 string `json:"weathering_v1"`
	WeatheringV2 string `json:"weathering_v2"`
	SyncStatus   int    `json:"sync_status"`
}

// Discontinuity is a logged joint or structure at a single depth
type Discontinuity struct {
	ID               int64   `json:"id"`
	DiscontinuityID  string  `json:"discontinuity_id"`
	PointID          string  `json:"point_id"`
	Depth            float64 `json:"depth"`
	Type             string  `json:"type"`
	Dip              int     `json:"dip"`
	Shape            string  `json:"shape"`
	Aperture         int     `json:"aperture"`
	RoughnessRating  int     `json:"roughness_rating"`
	WeatheringRating int     `json:"weathering_rating"`
	JCR              int     `json:"jcr"`
	ConditionDiscon  int     `json:"condition_discon"`
	JrRoughness      float64 `json:"jr_roughness"`
	JaAlteration     float64 `json:"ja_alteration"`
	JnSet            float64 `json:"jn_set"`
	SyncStatus       int     `json:"sync_status"`
}

// CoreCondition marks a broken, lost or faulted interval
type CoreCondition struct {
	ID              int64   `json:"id"`
	CoreConditionID string  `json:"core_condition_id"`
	PointID         string  `json:"point_id"`
	Depth           float64 `json:"depth"`
	Bottom          float64 `json:"bottom"`
	Type            string  `json:"type"`
	SyncStatus      int     `json:"sync_status"`
}

// Sample is a resistance test (SPT and similar)
type Sample struct {
	ID              int64   `json:"id"`
	SampleID        string  `json:"sample_id"`
	PointID         string  `json:"point_id"`
	Depth           float64 `json:"depth"`
	Bottom          float64 `json:"bottom"`
	Number          int     `json:"number"`
	Type            string  `json:"type"`
	V15             int     `json:"v_15"`
	V30             int     `json:"v_30"`
	V45             int     `json:"v_45"`
	SampleRecovery  string  `json:"sample_recobery"`
	BlowsLimitDepth string  `json:"blows_limit_depth"`
	SyncStatus      int     `json:"sync_status"`
}

// HydraulicCond is a permeability test
type HydraulicCond struct {
	ID          int64   `json:"id"`
	HydraulicID string  `json:"hydraulic_id"`
	PointID     string  `json:"point_id"`
	Depth       float64 `json:"depth"`
	Bottom      float64 `json:"bottom"`
	Number      int     `json:"number"`
	K           float64 `json:"k"`
	Check       bool    `json:"check"`
	SyncStatus  int     `json:"sync_status"`
}

// SoilProfile is a stratum annotation. Rows with a link field set are
// derived from a test and owned by it.
type SoilProfile struct {
	ID                int64    `json:"id"`
	SoilID            string   `json:"soil_id"`
	PointID           string   `json:"point_id"`
	Depth             float64  `json:"depth"`
	Bottom            *float64 `json:"bottom,omitempty"`
	Graphic           string   `json:"graphic"`
	Description       string   `json:"description"`
	UnitSummary       string   `json:"unit_summary"`
	LinkedSampleID    string   `json:"linked_sample_id,omitempty"`
	LinkedHydraulicID string   `json:"linked_hydraulic_id,omitempty"`
	SyncStatus        int      `json:"sync_status"`
}

// IsLinked reports whether the row is derived from a test
func (s *SoilProfile) IsLinked() bool {
	return s.LinkedSampleID != "" || s.LinkedHydraulicID != ""
}

// Piezometer is an installed instrument over an interval
type Piezometer struct {
	ID           int64   `json:"id"`
	PiezometerID string  `json:"piezometer_id"`
	PointID      string  `json:"point_id"`
	Depth        float64 `json:"depth"`
	Bottom       float64 `json:"bottom"`
	Graphic      string  `json:"graphic"`
	Description  string  `json:"description"`
	ThermNodeNum int     `json:"therm_node_num"`
	Lines        bool    `json:"lines"`
	Color        string  `json:"color"`
	Name         string  `json:"name"`
	ProfPiezo    float64 `json:"prof_piezo"`
	SyncStatus   int     `json:"sync_status"`
}

// WaterObservation is the groundwater level of a point
type WaterObservation struct {
	ID                   int64   `json:"id"`
	WaterID              string  `json:"water_id"`
	PointID              string  `json:"point_id"`
	Depth                float64 `json:"depth"`
	WaterObservationDate string  `json:"water_observation_date"`
	SyncStatus           int     `json:"sync_status"`
}

// Method records the boring or drilling technique over an interval
type Method struct {
	ID         int64   `json:"id"`
	MethodID   string  `json:"method_id"`
	PointID    string  `json:"point_id"`
	Depth      float64 `json:"depth"`
	Bottom     float64 `json:"bottom"`
	Method     string  `json:"method"`
	Type       string  `json:"type"`
	SyncStatus int     `json:"sync_status"`
}
