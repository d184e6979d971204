package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Run_AllHealthy(t *testing.T) {
	c := NewChecker(time.Second,
		&ReferenceTablesCheck{},
		&ParserSmokeCheck{Probe: func(ctx context.Context) error { return nil }},
	)

	status := c.Run(context.Background())
	assert.Equal(t, StateHealthy, status.Overall)
	assert.Len(t, status.Components, 2)
	assert.EqualValues(t, 1, status.CheckCount)
}

func TestChecker_Run_ReferenceLoadError_IsUnhealthy(t *testing.T) {
	c := NewChecker(time.Second, &ReferenceTablesCheck{LoadErr: errors.New("missing file")})

	status := c.Run(context.Background())
	assert.Equal(t, StateUnhealthy, status.Overall)
	assert.Equal(t, StateUnhealthy, status.Components["reference_tables"].Status)
}

func TestChecker_Run_OpenCircuit_IsWarningNotUnhealthy(t *testing.T) {
	c := NewChecker(time.Second,
		&ReferenceTablesCheck{},
		&CircuitStateCheck{ClientName: "ai-enrichment", IsOpen: func() bool { return true }},
	)

	status := c.Run(context.Background())
	assert.Equal(t, StateWarning, status.Overall)
}

func TestChecker_Last_ReturnsCachedStatus(t *testing.T) {
	c := NewChecker(time.Second, &ReferenceTablesCheck{})

	assert.Equal(t, StateHealthy, c.Last().Overall)
	c.Run(context.Background())
	assert.EqualValues(t, 1, c.Last().CheckCount)
}

func TestChecker_HTTPHandler_UnhealthyReturns503(t *testing.T) {
	c := NewChecker(time.Second, &ReferenceTablesCheck{LoadErr: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c.HTTPHandler()(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChecker_HTTPHandler_HealthyReturns200(t *testing.T) {
	c := NewChecker(time.Second, &ReferenceTablesCheck{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c.HTTPHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
