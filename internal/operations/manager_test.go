package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/config"
	"raisetl/internal/dataprocessing"
	"raisetl/internal/errors"
	"raisetl/internal/infrastructure"
	"raisetl/internal/shared/testutil"
)

func newTestManager(t *testing.T, steps ...Step) (*Manager, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	registry := NewRegistry()
	for _, s := range steps {
		require.NoError(t, registry.Register(s))
	}
	return NewManager(registry, nil, logger), handler
}

func TestManager_ExecuteSequential(t *testing.T) {
	var order []string
	record := func(id string) func(context.Context, *OperationState) error {
		return func(ctx context.Context, state *OperationState) error {
			order = append(order, id)
			assert.Equal(t, id, infrastructure.GetStage(ctx))
			state.GetStage(id).AddStats(dataprocessing.RowStats{Read: 3, Written: 2})
			return nil
		}
	}
	a, b := newFakeStep("a", record("a")), newFakeStep("b", record("b"))
	m, handler := newTestManager(t, a, b)

	ctx := infrastructure.WithRunID(context.Background(), "run-42")
	resp, err := m.Execute(ctx, OperationRequest{})
	require.NoError(t, err)

	assert.Equal(t, "run-42", resp.ID)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, StepStatusCompleted, resp.Steps["a"].Status)
	assert.Equal(t, int64(3), resp.Steps["b"].Totals().Read)

	state, err := m.GetOperation("run-42")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, state.Outputs())

	assert.Equal(t, 2, handler.CountMessage("Stage completed"))
	testutil.AssertNoErrors(t, handler)
}

func TestManager_FailureStopsRun(t *testing.T) {
	missing := errors.NewMissingColumnError("in.csv", map[string][]string{"ano": {"Ano"}}, []string{"x"})
	a := newFakeStep("a", nil)
	b := newFakeStep("b", func(context.Context, *OperationState) error { return missing })
	c := newFakeStep("c", nil)
	m, handler := newTestManager(t, a, b, c)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	assert.Equal(t, errors.ExitMissingColumn, errors.ExitCode(err))
	assert.ErrorIs(t, err, missing)
	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, StepStatusCompleted, resp.Steps["a"].Status)
	assert.Equal(t, StepStatusFailed, resp.Steps["b"].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps["c"].Status)
	assert.False(t, c.executed)
	assert.True(t, handler.ContainsMessage("Stage failed"))
}

func TestManager_ValidationFailure(t *testing.T) {
	a := newFakeStep("a", nil)
	a.validateErr = errors.NewMissingInputError("rais.csv", os.ErrNotExist)
	m, _ := newTestManager(t, a)

	_, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, errors.ExitMissingInput, errors.ExitCode(err))
	assert.False(t, a.executed)
}

func TestManager_Cancelled(t *testing.T) {
	a := newFakeStep("a", nil)
	m, _ := newTestManager(t, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := m.Execute(ctx, OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OperationStatusCancelled, resp.Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps["a"].Status)
}

func TestManager_UnknownStage(t *testing.T) {
	m, _ := newTestManager(t, newFakeStep("a", nil))
	_, err := m.Execute(context.Background(), OperationRequest{Stages: []string{"b"}})
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(err))
}

func TestManager_RecordsMetrics(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "raisetl.prom")
	ctx := infrastructure.WithRunID(context.Background(), "run-metrics")
	tel, err := infrastructure.InitializeTelemetry(ctx, config.MetricsConfig{Textfile: textfile}, config.TracingConfig{}, nil)
	require.NoError(t, err)

	step := newFakeStep(StageIDDemand, func(_ context.Context, state *OperationState) error {
		state.GetStage(StageIDDemand).AddStats(dataprocessing.RowStats{
			Read:    10,
			Written: 2,
			Skipped: map[string]int64{dataprocessing.SkipEmptyKey: 3},
		})
		return nil
	})
	logger, _ := testutil.NewTestLogger(t)
	registry := NewRegistry()
	require.NoError(t, registry.Register(step))

	_, err = NewManager(registry, tel, logger).Execute(ctx, OperationRequest{})
	require.NoError(t, err)
	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `stage="demand"`)
	assert.Contains(t, string(content), `reason="empty_key"`)
	assert.Contains(t, string(content), "raisetl_stage_duration_seconds")
}
