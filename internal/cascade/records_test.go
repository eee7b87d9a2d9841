package cascade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

func newCore(pointID string, depth, bottom float64) types.Core {
	return types.Core{PointID: pointID, Depth: depth, Bottom: bottom, TCRLength: bottom - depth, RQDLength: (bottom - depth) / 2}
}

func runNumbers(t *testing.T, e *Engine, pointID string) map[string]int {
	t.Helper()
	cores, err := e.ListCores(context.Background(), pointID)
	require.NoError(t, err)
	out := map[string]int{}
	for _, c := range cores {
		out[c.CoreID] = c.RunNumber
	}
	return out
}

func TestCoreRunNumbers(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	var ids []string
	for i := 0; i < 3; i++ {
		res, err := e.CreateCore(ctx, newCore("BH-01", float64(10+i), float64(11+i)))
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Core.RunNumber)
		assert.Regexp(t, `^CORE-[0-9A-Z]{6}$`, res.Core.CoreID)
		ids = append(ids, res.Core.CoreID)
	}

	del, err := e.DeleteCore(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 2, del.Renumbered)
	assert.Equal(t, map[string]int{ids[1]: 1, ids[2]: 2}, runNumbers(t, e, "BH-01"))

	res, err := e.CreateCore(ctx, newCore("BH-01", 13, 14))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Core.RunNumber)
}

func TestCoreNumberingPolicies(t *testing.T) {
	for _, tc := range []struct {
		policy NumberingPolicy
		want   int
	}{
		{NumberByCount, 2},
		{NumberByMax, 8},
	} {
		t.Run(string(tc.policy), func(t *testing.T) {
			e, store := setupEngine(t, func(c *Config) { c.CoreNumbering = tc.policy })
			ctx := context.Background()
			seedPoint(t, e, "W51-01", "BH-01")

			// a run imported with a gap in its numbering
			imported := newCore("BH-01", 0, 1)
			imported.CoreID = "CORE-IMPORT"
			imported.RunNumber = 7
			require.NoError(t, store.Cores().Insert(ctx, &imported))

			res, err := e.CreateCore(ctx, newCore("BH-01", 1, 2))
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Core.RunNumber)
		})
	}
}

func TestCoreWarningsAndUpdate(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	c := newCore("BH-01", 10, 11.5)
	c.TCRLength = 1.0
	c.RQDLength = 1.2
	res, err := e.CreateCore(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, []string{"RQD is greater than TCR"}, res.Warnings)

	_, err = e.CreateCore(ctx, types.Core{PointID: "BH-01", Depth: 10, Bottom: 11, TCRLength: 2})
	assert.ErrorIs(t, err, types.ErrInvalidInterval)

	edit := *res.Core
	edit.RQDLength = 0.8
	edit.RunNumber = 40
	edit.PointID = "BH-99"
	updated, err := e.UpdateCore(ctx, edit)
	require.NoError(t, err)
	assert.Empty(t, updated.Warnings)
	assert.Equal(t, 1, updated.Core.RunNumber)
	assert.Equal(t, "BH-01", updated.Core.PointID)

	got, err := e.GetCore(ctx, res.Core.CoreID)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got.Core.RQDLength, 1e-9)
}

func TestStrengthWeathering(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	c, err := e.CreateCore(ctx, newCore("BH-01", 10, 11))
	require.NoError(t, err)

	first, err := e.SaveStrengthWeathering(ctx, types.StrengthWeathering{
		CoreID: c.Core.CoreID, StrengthV1: "R3", StrengthV2: "R4", WeatheringV1: "W2",
	})
	require.NoError(t, err)
	require.NotNil(t, first.Strength)
	assert.InDelta(t, 3.5, *first.Strength, 1e-9)
	assert.Nil(t, first.Weathering)

	second, err := e.SaveStrengthWeathering(ctx, types.StrengthWeathering{
		CoreID: c.Core.CoreID, StrengthV1: "R2", StrengthV2: "R2", WeatheringV1: "W1", WeatheringV2: "W2",
	})
	require.NoError(t, err)
	assert.Equal(t, first.StrengthWeathering.StrengthID, second.StrengthWeathering.StrengthID)
	require.NotNil(t, second.Weathering)
	assert.InDelta(t, 1.5, *second.Weathering, 1e-9)

	rows, err := store.StrengthWeathering().List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	got, err := e.GetStrengthWeathering(ctx, c.Core.CoreID)
	require.NoError(t, err)
	assert.Equal(t, "R2", got.StrengthWeathering.StrengthV1)

	_, err = e.SaveStrengthWeathering(ctx, types.StrengthWeathering{CoreID: c.Core.CoreID, StrengthV1: "R1", StrengthV2: "R5"})
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	_, err = e.SaveStrengthWeathering(ctx, types.StrengthWeathering{CoreID: "CORE-NOPE", StrengthV1: "R1"})
	assert.ErrorIs(t, err, types.ErrRecordNotFound)

	del, err := e.DeleteCore(ctx, c.Core.CoreID)
	require.NoError(t, err)
	assert.Equal(t, 1, del.Deleted["strength_weathering"])
	_, err = e.GetStrengthWeathering(ctx, c.Core.CoreID)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestDiscontinuityLifecycle(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	d, err := e.CreateDiscontinuity(ctx, types.Discontinuity{PointID: "BH-01", Depth: 12.3, Type: "JN", Dip: 45, Shape: "PL"})
	require.NoError(t, err)
	assert.Regexp(t, `^DISC-[0-9A-Z]{6}$`, d.DiscontinuityID)

	_, err = e.CreateDiscontinuity(ctx, types.Discontinuity{PointID: "BH-01", Depth: 12.3, Type: "XX"})
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	edit := *d
	edit.Dip = 60
	_, err = e.UpdateDiscontinuity(ctx, edit)
	require.NoError(t, err)

	list, err := e.ListDiscontinuities(ctx, "BH-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 60, list[0].Dip)

	_, err = e.DeleteDiscontinuity(ctx, d.DiscontinuityID)
	require.NoError(t, err)
	_, err = e.DeleteDiscontinuity(ctx, d.DiscontinuityID)
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestCoreConditionLifecycle(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	c, err := e.CreateCoreCondition(ctx, types.CoreCondition{PointID: "BH-01", Depth: 5, Bottom: 5.4, Type: "Lost Core"})
	require.NoError(t, err)
	assert.Regexp(t, `^COND-[0-9A-Z]{6}$`, c.CoreConditionID)

	_, err = e.CreateCoreCondition(ctx, types.CoreCondition{PointID: "BH-01", Depth: 5, Bottom: 5.4, Type: "Cracked"})
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	edit := *c
	edit.Type = "Fault Core"
	_, err = e.UpdateCoreCondition(ctx, edit)
	require.NoError(t, err)

	list, err := e.ListCoreConditions(ctx, "BH-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Fault Core", list[0].Type)

	_, err = e.DeleteCoreCondition(ctx, c.CoreConditionID)
	require.NoError(t, err)
}

func TestPiezometerDefaults(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	p, err := e.CreatePiezometer(ctx, types.Piezometer{PointID: "BH-01", Depth: 2, Bottom: 9, Name: "PZ-1"})
	require.NoError(t, err)
	assert.Equal(t, "Standpipe", p.Graphic)
	assert.Equal(t, "#4F46E5", p.Color)

	custom, err := e.CreatePiezometer(ctx, types.Piezometer{PointID: "BH-01", Depth: 2, Bottom: 9, Graphic: "VW", Color: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, "VW", custom.Graphic)

	list, err := e.ListPiezometers(ctx, "BH-01")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	edit := *p
	edit.Bottom = 1
	_, err = e.UpdatePiezometer(ctx, edit)
	assert.ErrorIs(t, err, types.ErrInvalidInterval)

	_, err = e.DeletePiezometer(ctx, custom.PiezometerID)
	require.NoError(t, err)
}

func TestManualSoilProfile(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	bottom := 3.0
	s, err := e.CreateSoilProfile(ctx, types.SoilProfile{PointID: "BH-01", Depth: 0, Bottom: &bottom, Graphic: "SM", Description: "Silty sand"})
	require.NoError(t, err)
	assert.False(t, s.IsLinked())

	_, err = e.CreateSoilProfile(ctx, types.SoilProfile{PointID: "BH-01", Depth: 1, LinkedSampleID: "SAMP-AAAAAA"})
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	_, err = e.CreateSoilProfile(ctx, types.SoilProfile{PointID: "BH-01", Depth: 1, Graphic: "XX"})
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	edit := *s
	edit.Description = "Sand"
	edit.LinkedSampleID = "SAMP-AAAAAA"
	updated, err := e.UpdateSoilProfile(ctx, edit)
	require.NoError(t, err)
	assert.Empty(t, updated.LinkedSampleID)

	list, err := e.ListSoilProfiles(ctx, "BH-01")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sand", list[0].Description)
	assert.False(t, list[0].IsLinked())

	_, err = e.DeleteSoilProfile(ctx, s.SoilID)
	require.NoError(t, err)
}

func TestWaterObservationUpsert(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	_, err := e.GetWaterObservation(ctx, "BH-01")
	assert.ErrorIs(t, err, types.ErrRecordNotFound)

	first, err := e.SaveWaterObservation(ctx, types.WaterObservation{PointID: "BH-01", Depth: 3.2, WaterObservationDate: "2024-03-01"})
	require.NoError(t, err)
	second, err := e.SaveWaterObservation(ctx, types.WaterObservation{PointID: "BH-01", Depth: 2.9, WaterObservationDate: "2024-03-08"})
	require.NoError(t, err)
	assert.Equal(t, first.WaterID, second.WaterID)

	n, err := store.WaterObservations().Count(ctx, storage.WaterPoint, "BH-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.GetWaterObservation(ctx, "BH-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", got.WaterObservationDate)

	_, err = e.SaveWaterObservation(ctx, types.WaterObservation{PointID: "BH-02", Depth: 1, WaterObservationDate: "2024-03-01"})
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestMethodUpsertPerCategory(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	boring, err := e.SaveMethod(ctx, types.Method{PointID: "BH-01", Depth: 0, Bottom: 10, Method: "Boring", Type: "HW"})
	require.NoError(t, err)
	_, err = e.SaveMethod(ctx, types.Method{PointID: "BH-01", Depth: 10, Bottom: 30, Method: "Drilling", Type: "HQ"})
	require.NoError(t, err)
	again, err := e.SaveMethod(ctx, types.Method{PointID: "BH-01", Depth: 0, Bottom: 12, Method: "Boring", Type: "NW"})
	require.NoError(t, err)
	assert.Equal(t, boring.MethodID, again.MethodID)

	list, err := e.ListMethods(ctx, "BH-01")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = e.SaveMethod(ctx, types.Method{PointID: "BH-01", Depth: 0, Bottom: 1, Method: "Augering"})
	assert.ErrorIs(t, err, types.ErrInvalidValue)
}

func TestMarkSyncedAndDirtySummary(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")
	seedPoint(t, e, "W51-01", "BH-02")
	populate(t, e, "BH-01")
	populate(t, e, "BH-02")

	sum, err := e.DirtySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"W51-01"}, sum.Projects)
	assert.Equal(t, []string{"BH-01", "BH-02"}, sum.Points)
	assert.Equal(t, 2, sum.Tables["strength_weathering"])
	assert.Equal(t, 6, sum.Tables["soil_profiles"])

	res, err := e.MarkSynced(ctx, MarkSynced{ProjectID: "W51-01", PointID: "BH-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated["points"])
	assert.Equal(t, 3, res.Updated["soil_profiles"])
	assert.Equal(t, 1, res.Updated["strength_weathering"])

	sum, err = e.DirtySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BH-02"}, sum.Points)
	assert.Equal(t, 1, sum.Tables["strength_weathering"])

	// any edit flips the row back to dirty
	cores, err := e.ListCores(ctx, "BH-01")
	require.NoError(t, err)
	_, err = e.UpdateCore(ctx, *cores[0])
	require.NoError(t, err)
	sum, err = e.DirtySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BH-01", "BH-02"}, sum.Points)

	_, err = e.MarkSynced(ctx, MarkSynced{ProjectID: "W51-01"})
	require.NoError(t, err)
	sum, err = e.DirtySummary(ctx)
	require.NoError(t, err)
	assert.Empty(t, sum.Projects)
	assert.Empty(t, sum.Points)
	for table, n := range sum.Tables {
		assert.Zero(t, n, table)
	}

	_, err = e.MarkSynced(ctx, MarkSynced{ProjectID: "W51-01", PointID: "BH-77"})
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}
