package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInterval(t *testing.T) {
	tests := []struct {
		name   string
		depth  float64
		bottom float64
		ok     bool
	}{
		{"valid", 2.0, 2.45, true},
		{"equal bounds", 2.0, 2.0, false},
		{"inverted", 3.0, 2.0, false},
		{"negative depth", -1.0, 2.0, false},
		{"zero start", 0, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterval(tt.depth, tt.bottom)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInterval)
		})
	}
}

func TestCoreValidate(t *testing.T) {
	base := func() *Core {
		return &Core{PointID: "BH-01", Depth: 10, Bottom: 11.5, TCRLength: 1.4, RQDLength: 1.1, Jn: 9}
	}

	t.Run("valid run", func(t *testing.T) {
		c := base()
		require.NoError(t, c.Validate())
		assert.Empty(t, c.Warnings())
	})

	t.Run("TCR within tolerance", func(t *testing.T) {
		c := base()
		c.TCRLength = 1.5005
		assert.NoError(t, c.Validate())
	})

	t.Run("TCR exceeds length", func(t *testing.T) {
		c := base()
		c.TCRLength = 1.6
		assert.ErrorIs(t, c.Validate(), ErrInvalidInterval)
	})

	t.Run("RQD exceeds length", func(t *testing.T) {
		c := base()
		c.RQDLength = 1.52
		assert.ErrorIs(t, c.Validate(), ErrInvalidInterval)
	})

	t.Run("RQD above TCR is advisory", func(t *testing.T) {
		c := base()
		c.TCRLength = 0.8
		c.RQDLength = 1.0
		require.NoError(t, c.Validate())
		assert.Equal(t, []string{"RQD is greater than TCR"}, c.Warnings())
	})

	t.Run("unknown Jn", func(t *testing.T) {
		c := base()
		c.Jn = 7
		err := c.Validate()
		assert.ErrorIs(t, err, ErrInvalidValue)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "jn", verr.Field)
	})
}

func TestStrengthWeatheringValidate(t *testing.T) {
	tests := []struct {
		name string
		sw   StrengthWeathering
		ok   bool
	}{
		{"matching grades", StrengthWeathering{CoreID: "CORE-1", StrengthV1: "R3 - Media", StrengthV2: "R3", WeatheringV1: "W2", WeatheringV2: "W1"}, true},
		{"one step apart", StrengthWeathering{CoreID: "CORE-1", StrengthV1: "R2", StrengthV2: "R3"}, true},
		{"two steps apart", StrengthWeathering{CoreID: "CORE-1", StrengthV1: "R1", StrengthV2: "R3"}, false},
		{"weathering label in strength slot", StrengthWeathering{CoreID: "CORE-1", StrengthV1: "W1"}, false},
		{"grade out of scale", StrengthWeathering{CoreID: "CORE-1", WeatheringV1: "W7"}, false},
		{"partial entry", StrengthWeathering{CoreID: "CORE-1", StrengthV1: "R4"}, true},
		{"missing core", StrengthWeathering{StrengthV1: "R4"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sw.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidValue)
			}
		})
	}
}

func TestOrdinal(t *testing.T) {
	g, ok := Ordinal("R3 - Media", 'R')
	assert.True(t, ok)
	assert.Equal(t, 3, g)

	_, ok = Ordinal("R3", 'W')
	assert.False(t, ok)

	_, ok = Ordinal("", 'R')
	assert.False(t, ok)
}

func TestDiscontinuityValidate(t *testing.T) {
	d := Discontinuity{
		PointID: "BH-01", Depth: 12.3, Type: "JN", Dip: 45, Shape: "PL",
		Aperture: 3, RoughnessRating: 5, WeatheringRating: 3, JCR: 20,
		ConditionDiscon: 4, JrRoughness: 1.5, JaAlteration: 0.75, JnSet: 4,
	}
	require.NoError(t, d.Validate())

	bad := d
	bad.JaAlteration = 5
	assert.ErrorIs(t, bad.Validate(), ErrInvalidValue)

	bad = d
	bad.Dip = 95
	assert.ErrorIs(t, bad.Validate(), ErrInvalidValue)
}

func TestSoilProfileValidate(t *testing.T) {
	bottom := 3.0
	s := SoilProfile{PointID: "BH-01", Depth: 1, Bottom: &bottom, Graphic: "CL"}
	assert.NoError(t, s.Validate())

	s.Graphic = "XX"
	assert.ErrorIs(t, s.Validate(), ErrInvalidValue)

	open := SoilProfile{PointID: "BH-01", Depth: 2.225}
	assert.NoError(t, open.Validate())

	both := SoilProfile{PointID: "BH-01", Depth: 1, LinkedSampleID: "SAMP-1", LinkedHydraulicID: "HYD-1"}
	assert.ErrorIs(t, both.Validate(), ErrInvalidValue)
}

func TestProtectedError(t *testing.T) {
	err := &ProtectedError{SoilID: "SOIL-1", OwnerKind: "sample", OwnerID: "SAMP-1"}
	assert.ErrorIs(t, err, ErrLinkedRecordProtected)
	assert.Contains(t, err.Error(), "SAMP-1")
}
