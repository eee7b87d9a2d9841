package types

import (
	"math"
	"slices"
	"strings"
)

// LengthTolerance absorbs float noise when comparing recovery lengths to a run
const LengthTolerance = 0.001

// ValidateInterval checks the shared depth/bottom invariant
func ValidateInterval(depth, bottom float64) error {
	if math.IsNaN(depth) || math.IsNaN(bottom) {
		return IntervalError("depth", "depth and bottom must be numbers")
	}
	if depth < 0 || bottom < 0 {
		return IntervalError("depth", "negative depths are not allowed (%.2f, %.2f)", depth, bottom)
	}
	if bottom <= depth {
		return IntervalError("bottom", "bottom %.2f must be greater than depth %.2f", bottom, depth)
	}
	return nil
}

func validateDepth(depth float64) error {
	if math.IsNaN(depth) || depth < 0 {
		return IntervalError("depth", "depth must be a non-negative number")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValueError(field, "is required")
	}
	return nil
}

func oneOf[T comparable](field string, value T, allowed []T) error {
	if !slices.Contains(allowed, value) {
		return ValueError(field, "%v is not one of %v", value, allowed)
	}
	return nil
}

// optionalOneOf accepts the zero value as "not recorded"
func optionalOneOf[T comparable](field string, value T, allowed []T) error {
	var zero T
	if value == zero {
		return nil
	}
	return oneOf(field, value, allowed)
}

// Validate checks the project business key
func (p *Project) Validate() error {
	return required("project_id", p.ProjectID)
}

// Validate checks the point keys and depth
func (p *Point) Validate() error {
	if err := required("point_id", p.PointID); err != nil {
		return err
	}
	if err := required("project_id", p.ProjectID); err != nil {
		return err
	}
	if p.HoleDepth < 0 {
		return IntervalError("hole_depth", "must not be negative")
	}
	return nil
}

// Validate checks the run interval, recovery lengths and Jn rating.
// RQD above TCR is not an error; see Warnings.
func (c *Core) Validate() error {
	if err := ValidateInterval(c.Depth, c.Bottom); err != nil {
		return err
	}
	if c.TCRLength < 0 || c.RQDLength < 0 {
		return IntervalError("tcr_length", "recovery lengths must not be negative")
	}
	length := c.Length()
	if c.TCRLength > length+LengthTolerance {
		return IntervalError("tcr_length", "TCR %.2fm exceeds core length %.2fm", c.TCRLength, length)
	}
	if c.RQDLength > length+LengthTolerance {
		return IntervalError("rqd_length", "RQD %.2fm exceeds core length %.2fm", c.RQDLength, length)
	}
	return optionalOneOf("jn", c.Jn, CoreJnValues)
}

// Warnings returns advisory findings that do not block a write
func (c *Core) Warnings() []string {
	var w []string
	if c.RQDLength > c.TCRLength {
		w = append(w, "RQD is greater than TCR")
	}
	return w
}

// Validate checks label format and the one-step agreement between paired labels
func (s *StrengthWeathering) Validate() error {
	if err := required("core_id", s.CoreID); err != nil {
		return err
	}
	if err := validatePair("strength", s.StrengthV1, s.StrengthV2, 'R'); err != nil {
		return err
	}
	return validatePair("weathering", s.WeatheringV1, s.WeatheringV2, 'W')
}

func validatePair(field, v1, v2 string, prefix byte) error {
	var grades []int
	for i, label := range []string{v1, v2} {
		if label == "" {
			continue
		}
		g, ok := Ordinal(label, prefix)
		if !ok || g < MinOrdinal || g > MaxOrdinal {
			return ValueError(field, "v%d label %q is not %c%d..%c%d", i+1, label, prefix, MinOrdinal, prefix, MaxOrdinal)
		}
		grades = append(grades, g)
	}
	if len(grades) == 2 && (grades[1] < grades[0]-1 || grades[1] > grades[0]+1) {
		return ValueError(field, "v2 %s must be within one grade of v1 %s", v2, v1)
	}
	return nil
}

// Validate checks depth and every recorded rating against its scale
func (d *Discontinuity) Validate() error {
	if err := validateDepth(d.Depth); err != nil {
		return err
	}
	if d.Dip < 0 || d.Dip > 90 {
		return ValueError("dip", "%d is outside 0..90", d.Dip)
	}
	checks := []error{
		optionalOneOf("type", d.Type, discontinuityTypes),
		optionalOneOf("shape", d.Shape, discontinuityShapes),
		oneOf("aperture", d.Aperture, apertureRatings),
		oneOf("roughness_rating", d.RoughnessRating, roughnessRatings),
		oneOf("weathering_rating", d.WeatheringRating, weatheringRatings),
		oneOf("jcr", d.JCR, jcrRatings),
		oneOf("condition_discon", d.ConditionDiscon, conditionRatings),
		optionalOneOf("jr_roughness", d.JrRoughness, jrValues),
		optionalOneOf("ja_alteration", d.JaAlteration, jaValues),
		optionalOneOf("jn_set", d.JnSet, jnSetValues),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the interval and condition type
func (c *CoreCondition) Validate() error {
	if err := ValidateInterval(c.Depth, c.Bottom); err != nil {
		return err
	}
	return oneOf("type", c.Type, conditionTypes)
}

// Validate checks the interval, test type and blow counts
func (s *Sample) Validate() error {
	if err := ValidateInterval(s.Depth, s.Bottom); err != nil {
		return err
	}
	if err := oneOf("type", s.Type, sampleTypes); err != nil {
		return err
	}
	if s.V15 < 0 || s.V30 < 0 || s.V45 < 0 {
		return ValueError("v_15", "blow counts must not be negative")
	}
	return nil
}

// Validate checks the interval and coefficient
func (h *HydraulicCond) Validate() error {
	if err := ValidateInterval(h.Depth, h.Bottom); err != nil {
		return err
	}
	if math.IsNaN(h.K) || h.K < 0 {
		return ValueError("k", "coefficient must be a non-negative number")
	}
	return nil
}

// Validate checks a stratum. Bottom is optional for manual rows.
func (s *SoilProfile) Validate() error {
	if s.Bottom != nil {
		if err := ValidateInterval(s.Depth, *s.Bottom); err != nil {
			return err
		}
	} else if err := validateDepth(s.Depth); err != nil {
		return err
	}
	if s.Graphic != "" {
		if err := oneOf("graphic", s.Graphic, SoilGraphics); err != nil {
			return err
		}
	}
	if s.LinkedSampleID != "" && s.LinkedHydraulicID != "" {
		return ValueError("linked_sample_id", "a stratum links to a sample or a hydraulic test, not both")
	}
	return nil
}

// Validate checks the interval and installation numbers
func (p *Piezometer) Validate() error {
	if err := ValidateInterval(p.Depth, p.Bottom); err != nil {
		return err
	}
	if p.ThermNodeNum < 0 || p.ProfPiezo < 0 {
		return ValueError("therm_node_num", "must not be negative")
	}
	return nil
}

// Validate checks depth and date
func (w *WaterObservation) Validate() error {
	if err := validateDepth(w.Depth); err != nil {
		return err
	}
	return required("water_observation_date", w.WaterObservationDate)
}

// Validate checks the interval and category
func (m *Method) Validate() error {
	if err := ValidateInterval(m.Depth, m.Bottom); err != nil {
		return err
	}
	return oneOf("method", m.Method, methodTypes)
}
