package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/geolog-mcp/internal/cascade"
	"github.com/dshills/geolog-mcp/pkg/types"
)

var _ cascade.Observer = (*Metrics)(nil)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("point %q: %w", "BH-01", types.ErrRecordNotFound), "not_found"},
		{types.ErrDuplicateIdentifier, "duplicate"},
		{&types.ProtectedError{SoilID: "SOIL-1", OwnerKind: "sample", OwnerID: "SAMP-1"}, "protected"},
		{types.IntervalError("bottom", "bad"), "invalid"},
		{types.ValueError("type", "bad"), "invalid"},
		{types.ErrIdGenerationExhausted, "id_exhausted"},
		{context.Canceled, "cancelled"},
		{fmt.Errorf("%w: %w", types.ErrStorageFailure, errors.New("disk full")), "storage_failure"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestCascadeCounters(t *testing.T) {
	m := New()
	m.CascadeFinished("create_sample", 2*time.Millisecond, nil)
	m.CascadeFinished("create_sample", time.Millisecond, nil)
	m.CascadeFinished("rename_point", time.Millisecond, types.ErrDuplicateIdentifier)
	m.IDCollision("SAMP")

	assert.InDelta(t, 2, testutil.ToFloat64(m.cascades.WithLabelValues("create_sample", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cascades.WithLabelValues("rename_point", "duplicate")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.collisions.WithLabelValues("SAMP")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestHandler(t *testing.T) {
	m := New()
	m.CascadeFinished("delete_core", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `geolog_cascades_total{op="delete_core",result="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
