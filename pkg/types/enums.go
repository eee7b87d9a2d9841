package types

import (
	"regexp"
	"slices"
	"strconv"
)

// ConditionType classifies a core condition interval
type ConditionType string

const (
	ConditionBroken ConditionType = "Broken Core"
	ConditionLost   ConditionType = "Lost Core"
	ConditionFault  ConditionType = "Fault Core"
)

// SampleType is the resistance test family
type SampleType string

const (
	SampleSPT    SampleType = "SPT"
	SampleLPT    SampleType = "LPT"
	SampleShelby SampleType = "Shelby"
	SampleCP     SampleType = "CP"
)

// MethodCategory is the advance technique of a method row
type MethodCategory string

const (
	MethodBoring   MethodCategory = "Boring"
	MethodDrilling MethodCategory = "Drilling"
)

// Piezometer defaults
const (
	DefaultPiezometerGraphic = "Standpipe"
	DefaultPiezometerColor   = "#4F46E5"
)

var (
	conditionTypes = []string{string(ConditionBroken), string(ConditionLost), string(ConditionFault)}
	sampleTypes    = []string{string(SampleSPT), string(SampleLPT), string(SampleShelby), string(SampleCP)}
	methodTypes    = []string{string(MethodBoring), string(MethodDrilling)}

	// SoilGraphics are the USCS group symbols plus Rock
	SoilGraphics = []string{
		"GW", "GP", "GM", "GC",
		"SW", "SP", "SM", "SC",
		"ML", "CL", "OL", "MH", "CH", "OH", "PT", "Rock",
	}

	// CoreJnValues are the joint set number ratings for a run
	CoreJnValues = []float64{0.5, 2, 3, 4, 6, 9, 12, 15, 20}

	discontinuityTypes  = []string{"JN", "FLT", "SH", "VN", "SZ", "BC", "BD", "FL", "CT", "DK", "SL"}
	discontinuityShapes = []string{"PL", "CU", "IR", "ON", "ES"}
	apertureRatings     = []int{0, 1, 3, 5, 6}
	roughnessRatings    = []int{0, 1, 3, 5, 6}
	weatheringRatings   = []int{0, 1, 3, 5, 6}
	jcrRatings          = []int{0, 10, 20, 25, 30}
	conditionRatings    = []int{0, 2, 4, 6}
	jrValues            = []float64{0.5, 1, 1.5, 2, 3}
	jaValues            = []float64{0.75, 1, 2, 3, 4, 6, 8, 10, 12, 15, 20}
	jnSetValues         = []float64{0.5, 2, 3, 4, 6, 12, 15, 20}
)

// Ordinal scale bounds for strength (R) and weathering (W) labels
const (
	MinOrdinal = 0
	MaxOrdinal = 6
)

var ordinalPattern = regexp.MustCompile(`^([RW])(\d+)`)

// Ordinal extracts the grade from a label such as "R3 - Media" or "W2".
// The letter must match prefix.
func Ordinal(label string, prefix byte) (int, bool) {
	m := ordinalPattern.FindStringSubmatch(label)
	if m == nil || m[1][0] != prefix {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsMethodCategory reports whether m names a known method category
func IsMethodCategory(m string) bool {
	return slices.Contains(methodTypes, m)
}
