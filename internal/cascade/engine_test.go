package cascade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/geolog-mcp/internal/storage"
	"github.com/dshills/geolog-mcp/pkg/types"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.IDRetry = RetryConfig{MaxRetries: 8, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
	return cfg
}

func setupEngine(t *testing.T, tweak ...func(*Config)) (*Engine, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := testConfig()
	for _, fn := range tweak {
		fn(&cfg)
	}
	eng, err := New(store, cfg)
	require.NoError(t, err)
	return eng, store
}

// seedPoint creates project and point if missing
func seedPoint(t *testing.T, e *Engine, projectID, pointID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.GetProject(ctx, projectID); types.IsNotFound(err) {
		_, err := e.CreateProject(ctx, types.Project{ProjectID: projectID, Title: "Test"})
		require.NoError(t, err)
	}
	_, err := e.CreatePoint(ctx, types.Point{PointID: pointID, ProjectID: projectID, Plunge: types.DefaultPlunge})
	require.NoError(t, err)
}

func spt(pointID string, depth, bottom float64, v15, v30, v45 int) types.Sample {
	return types.Sample{PointID: pointID, Depth: depth, Bottom: bottom, Type: "SPT", V15: v15, V30: v30, V45: v45}
}

func linkedSoil(t *testing.T, store storage.Storage, sampleID string) []*types.SoilProfile {
	t.Helper()
	rows, err := store.SoilProfiles().FindAll(context.Background(), storage.SoilLinkedSample, sampleID)
	require.NoError(t, err)
	return rows
}

func TestNewRejectsUnknownPolicy(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	cfg := DefaultConfig()
	cfg.CoreNumbering = "depth"
	_, err = New(store, cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.IDRetry.MaxRetries = 0
	_, err = New(store, cfg)
	assert.Error(t, err)
}

// Project W51-01, point BH-01: two samples, delete the first.
func TestSampleScenario(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	first, err := e.CreateSample(ctx, spt("BH-01", 2.00, 2.45, 8, 12, 15))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sample.Number)
	assert.Equal(t, "27", first.NValue)
	require.NotNil(t, first.Soil)
	assert.Equal(t, "SPT N°1: (2.00 m - 2.45 m)\nNSPT = 27", first.Soil.Description)
	assert.InDelta(t, 2.225, first.Soil.Depth, 1e-9)
	assert.Equal(t, first.Sample.SampleID, first.Soil.LinkedSampleID)
	assert.Nil(t, first.Soil.Bottom)

	second, err := e.CreateSample(ctx, spt("BH-01", 2.45, 2.90, 5, 50, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Sample.Number)
	assert.Equal(t, "Refusal", second.NValue)
	assert.Equal(t, "SPT N°2: (2.45 m - 2.90 m)\nNSPT = Refusal", second.Soil.Description)

	res, err := e.DeleteSample(ctx, first.Sample.SampleID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted["samples"])
	assert.Equal(t, 1, res.Deleted["soil_profiles"])
	assert.Equal(t, 1, res.Renumbered)

	moved, err := store.Samples().Find(ctx, storage.SampleKey, second.Sample.SampleID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Number)

	soil := linkedSoil(t, store, second.Sample.SampleID)
	require.Len(t, soil, 1)
	assert.Equal(t, "SPT N°1: (2.45 m - 2.90 m)\nNSPT = Refusal", soil[0].Description)

	assert.Empty(t, linkedSoil(t, store, first.Sample.SampleID))
}

// Bad intervals are rejected before any write.
func TestIntervalRejected(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	_, err := e.CreateCore(ctx, types.Core{PointID: "BH-01", Depth: 5, Bottom: 5})
	assert.ErrorIs(t, err, types.ErrInvalidInterval)

	_, err = e.CreateSample(ctx, spt("BH-01", 3, 2, 1, 1, 1))
	assert.ErrorIs(t, err, types.ErrInvalidInterval)

	_, err = e.CreateHydraulic(ctx, types.HydraulicCond{PointID: "BH-01", Depth: -1, Bottom: 2})
	assert.ErrorIs(t, err, types.ErrInvalidInterval)

	_, err = e.CreateCoreCondition(ctx, types.CoreCondition{PointID: "BH-01", Depth: 4, Bottom: 1, Type: "Lost Core"})
	assert.ErrorIs(t, err, types.ErrInvalidInterval)

	for name, count := range map[string]func() (int, error){
		"cores":   func() (int, error) { return store.Cores().Count(ctx, storage.CorePoint, "BH-01") },
		"samples": func() (int, error) { return store.Samples().Count(ctx, storage.SamplePoint, "BH-01") },
		"soil":    func() (int, error) { return store.SoilProfiles().Count(ctx, storage.SoilPoint, "BH-01") },
	} {
		n, err := count()
		require.NoError(t, err)
		assert.Zero(t, n, name)
	}

	ok, err := e.CreateSample(ctx, spt("BH-01", 1, 1.45, 1, 2, 3))
	require.NoError(t, err)

	bad := *ok.Sample
	bad.Bottom = 0.5
	_, err = e.UpdateSample(ctx, bad)
	assert.ErrorIs(t, err, types.ErrInvalidInterval)

	stored, err := store.Samples().Find(ctx, storage.SampleKey, ok.Sample.SampleID)
	require.NoError(t, err)
	assert.Equal(t, 1.45, stored.Bottom)
}

func TestEveryTestOwnsOneStratum(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	intervals := [][2]float64{{1, 1.45}, {3, 3.45}, {4.5, 4.95}}
	for i, iv := range intervals {
		res, err := e.CreateSample(ctx, spt("BH-01", iv[0], iv[1], 3, 4, 5))
		require.NoError(t, err)

		rows := linkedSoil(t, store, res.Sample.SampleID)
		require.Len(t, rows, 1)
		assert.InDelta(t, (iv[0]+iv[1])/2, rows[0].Depth, 1e-9)
		assert.Equal(t, sampleDescription(res.Sample), rows[0].Description)
		assert.Equal(t, i+1, res.Sample.Number)
	}
}

func TestDeleteInteriorSampleRenumbers(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	var ids []string
	for i := 0; i < 4; i++ {
		depth := float64(i + 1)
		res, err := e.CreateSample(ctx, spt("BH-01", depth, depth+0.45, 2, 3, 4))
		require.NoError(t, err)
		ids = append(ids, res.Sample.SampleID)
	}

	res, err := e.DeleteSample(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, 2, res.Renumbered)

	samples, err := e.ListSamples(ctx, "BH-01")
	require.NoError(t, err)
	require.Len(t, samples, 3)
	for i, s := range samples {
		assert.Equal(t, i+1, s.Number)
		rows := linkedSoil(t, store, s.SampleID)
		require.Len(t, rows, 1)
		assert.Equal(t, sampleDescription(s), rows[0].Description)
	}
	assert.Empty(t, linkedSoil(t, store, ids[1]))

	// deleting the last ordinal shifts nothing
	res, err = e.DeleteSample(ctx, ids[3])
	require.NoError(t, err)
	assert.Zero(t, res.Renumbered)
}

func TestUpdateSampleRecomputesStratum(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	created, err := e.CreateSample(ctx, spt("BH-01", 2, 2.45, 8, 12, 15))
	require.NoError(t, err)

	edit := *created.Sample
	edit.Depth, edit.Bottom = 3, 3.45
	edit.V30, edit.V45 = 20, 10
	edit.Number = 99
	updated, err := e.UpdateSample(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Sample.Number)
	assert.Equal(t, "30", updated.NValue)

	rows := linkedSoil(t, store, created.Sample.SampleID)
	require.Len(t, rows, 1)
	assert.Equal(t, "SPT N°1: (3.00 m - 3.45 m)\nNSPT = 30", rows[0].Description)
	assert.InDelta(t, 3.225, rows[0].Depth, 1e-9)
}

func TestUpdateSampleWithoutStratum(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	created, err := e.CreateSample(ctx, spt("BH-01", 2, 2.45, 8, 12, 15))
	require.NoError(t, err)
	_, err = store.SoilProfiles().DeleteWhere(ctx, storage.SoilLinkedSample, created.Sample.SampleID)
	require.NoError(t, err)

	edit := *created.Sample
	edit.V45 = 1
	updated, err := e.UpdateSample(ctx, edit)
	require.NoError(t, err)
	assert.Nil(t, updated.Soil)
	assert.Equal(t, "13", updated.NValue)
}

func TestHydraulicLinkage(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	first, err := e.CreateHydraulic(ctx, types.HydraulicCond{PointID: "BH-01", Depth: 1, Bottom: 2, K: 1.2e-5})
	require.NoError(t, err)
	assert.Equal(t, "Ensayo de Permeabilidad N°1\nLFCC-01: (1.00 m - 2.00 m)\nK=1.20x10-5cm/s", first.Soil.Description)
	assert.InDelta(t, 1.5, first.Soil.Depth, 1e-9)
	assert.Equal(t, first.Hydraulic.HydraulicID, first.Soil.LinkedHydraulicID)

	second, err := e.CreateHydraulic(ctx, types.HydraulicCond{PointID: "BH-01", Depth: 5, Bottom: 6, K: 0.5, Check: true})
	require.NoError(t, err)
	assert.Equal(t, "Ensayo de Permeabilidad N°2\nLFCC-02: (5.00 m - 6.00 m)\nK=MUY PERMEABLE", second.Soil.Description)

	_, err = e.DeleteHydraulic(ctx, first.Hydraulic.HydraulicID)
	require.NoError(t, err)

	moved, err := e.GetHydraulic(ctx, second.Hydraulic.HydraulicID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Hydraulic.Number)
	require.NotNil(t, moved.Soil)
	assert.Equal(t, "Ensayo de Permeabilidad N°1\nLFCC-01: (5.00 m - 6.00 m)\nK=MUY PERMEABLE", moved.Soil.Description)

	n, err := store.SoilProfiles().Count(ctx, storage.SoilLinkedHydraulic, first.Hydraulic.HydraulicID)
	require.NoError(t, err)
	assert.Zero(t, n)

	edit := *moved.Hydraulic
	edit.Check = false
	edit.K = 3e4
	updated, err := e.UpdateHydraulic(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "Ensayo de Permeabilidad N°1\nLFCC-01: (5.00 m - 6.00 m)\nK=3.00x10+4cm/s", updated.Soil.Description)
}

func TestHydraulicDescriptionThreshold(t *testing.T) {
	e, _ := setupEngine(t, func(c *Config) { c.Permeability.Threshold = 0.1 })
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	res, err := e.CreateHydraulic(ctx, types.HydraulicCond{PointID: "BH-01", Depth: 1, Bottom: 2, K: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Ensayo de Permeabilidad N°1\nLFCC-01: (1.00 m - 2.00 m)\nK=MUY PERMEABLE", res.Soil.Description)
}

func TestLinkedStratumProtected(t *testing.T) {
	e, store := setupEngine(t)
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	created, err := e.CreateSample(ctx, spt("BH-01", 2, 2.45, 8, 12, 15))
	require.NoError(t, err)
	before := *created.Soil

	edit := before
	edit.Description = "hand edited"
	_, err = e.UpdateSoilProfile(ctx, edit)
	assert.ErrorIs(t, err, types.ErrLinkedRecordProtected)

	var perr *types.ProtectedError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, created.Sample.SampleID, perr.OwnerID)

	_, err = e.DeleteSoilProfile(ctx, before.SoilID)
	assert.ErrorIs(t, err, types.ErrLinkedRecordProtected)

	after, err := store.SoilProfiles().Find(ctx, storage.SoilKey, before.SoilID)
	require.NoError(t, err)
	assert.Equal(t, before, *after)

	hyd, err := e.CreateHydraulic(ctx, types.HydraulicCond{PointID: "BH-01", Depth: 1, Bottom: 2, K: 1e-4})
	require.NoError(t, err)
	_, err = e.DeleteSoilProfile(ctx, hyd.Soil.SoilID)
	assert.ErrorIs(t, err, types.ErrLinkedRecordProtected)
}

func TestIDExhaustionWritesNothing(t *testing.T) {
	e, store := setupEngine(t, func(c *Config) {
		c.IDRetry = RetryConfig{MaxRetries: 5, BaseDelay: time.Microsecond, MaxDelay: time.Microsecond, Multiplier: 2}
	})
	ctx := context.Background()
	seedPoint(t, e, "W51-01", "BH-01")

	frozen := time.UnixMilli(1700000000000)
	e.ids.now = func() time.Time { return frozen }

	_, err := e.CreateSample(ctx, spt("BH-01", 1, 1.45, 1, 2, 3))
	require.NoError(t, err)

	_, err = e.CreateSample(ctx, spt("BH-01", 2, 2.45, 1, 2, 3))
	assert.ErrorIs(t, err, types.ErrIdGenerationExhausted)

	n, err := store.Samples().Count(ctx, storage.SamplePoint, "BH-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = store.SoilProfiles().Count(ctx, storage.SoilPoint, "BH-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUnknownPoint(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	_, err := e.CreateSample(ctx, spt("BH-404", 1, 1.45, 1, 2, 3))
	assert.ErrorIs(t, err, types.ErrRecordNotFound)

	_, err = e.DeleteSample(ctx, "SAMP-NOPE")
	assert.ErrorIs(t, err, types.ErrRecordNotFound)
}
