package geotech

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/geolog-mcp/pkg/types"
)

// RefusalBlows is the blow count at which a penetration test is stopped
const RefusalBlows = 50

// RefusalText is the persisted rendering of a refused test
const RefusalText = "Refusal"

// VeryPermeableText is the qualitative class written instead of a coefficient
const VeryPermeableText = "MUY PERMEABLE"

// NValue is the result of a penetration test: a blow count or refusal
type NValue struct {
	Blows   int
	Refusal bool
}

// String renders the value the way descriptions persist it
func (n NValue) String() string {
	if n.Refusal {
		return RefusalText
	}
	return strconv.Itoa(n.Blows)
}

// ComputeN derives the N-value from the three 15 cm increments. The first
// increment is a seating drive and only counts toward refusal.
func ComputeN(v15, v30, v45 int) NValue {
	if v15 >= RefusalBlows {
		return NValue{Refusal: true}
	}
	sum := v30 + v45
	if sum >= RefusalBlows {
		return NValue{Refusal: true}
	}
	return NValue{Blows: sum}
}

// SampleN computes the N-value of a sample row
func SampleN(s *types.Sample) NValue {
	return ComputeN(s.V15, s.V30, s.V45)
}

// Midpoint is the depth at which a derived stratum is placed
func Midpoint(depth, bottom float64) float64 {
	return (depth + bottom) / 2
}

// SampleDescription renders the stratum text derived from a resistance test
func SampleDescription(number int, depth, bottom float64, n NValue) string {
	return fmt.Sprintf("SPT N°%d: (%s m - %s m)\nNSPT = %s",
		number, ToFixed(depth, 2), ToFixed(bottom, 2), n)
}

// PermeabilityPolicy decides when a coefficient is rendered as very permeable.
// The check flag always wins; a positive Threshold also classifies K >= Threshold.
type PermeabilityPolicy struct {
	Threshold float64
}

// VeryPermeable reports whether the test falls in the qualitative class
func (p PermeabilityPolicy) VeryPermeable(k float64, check bool) bool {
	return check || (p.Threshold > 0 && k >= p.Threshold)
}

// Class returns the K text of a description
func (p PermeabilityPolicy) Class(k float64, check bool) string {
	if p.VeryPermeable(k, check) {
		return VeryPermeableText
	}
	return FormatK(k)
}

// FormatK renders a coefficient as 1.20x10-5cm/s
func FormatK(k float64) string {
	return strings.Replace(ToExponential(k, 2), "e", "x10", 1) + "cm/s"
}

// HydraulicDescription renders the stratum text derived from a permeability test
func HydraulicDescription(number int, depth, bottom float64, class string) string {
	return fmt.Sprintf("Ensayo de Permeabilidad N°%d\nLFCC-%02d: (%s m - %s m)\nK=%s",
		number, number, ToFixed(depth, 2), ToFixed(bottom, 2), class)
}

// RecoveryPercent is part/total as a rounded percentage, 0 for an empty run
func RecoveryPercent(part, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(part / total * 100))
}

// GradeIndex averages two ordinal labels. ok is false unless both parse.
func GradeIndex(v1, v2 string, prefix byte) (float64, bool) {
	g1, ok1 := types.Ordinal(v1, prefix)
	g2, ok2 := types.Ordinal(v2, prefix)
	if !ok1 || !ok2 {
		return 0, false
	}
	return float64(g1+g2) / 2, true
}

// Indices are the derived strength and weathering indices of a core
type Indices struct {
	Strength   *float64 `json:"strength_index,omitempty"`
	Weathering *float64 `json:"weathering_index,omitempty"`
}

// ComputeIndices derives both indices; they are never persisted
func ComputeIndices(sw *types.StrengthWeathering) Indices {
	var out Indices
	if sw == nil {
		return out
	}
	if v, ok := GradeIndex(sw.StrengthV1, sw.StrengthV2, 'R'); ok {
		out.Strength = &v
	}
	if v, ok := GradeIndex(sw.WeatheringV1, sw.WeatheringV2, 'W'); ok {
		out.Weathering = &v
	}
	return out
}
