package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

type period struct {
	fy fiscal.FinancialYear
	q  fiscal.Quarter
}

type fakeExporter struct {
	calls []period
	err   error
}

func (f *fakeExporter) Export(_ context.Context, fy fiscal.FinancialYear, q fiscal.Quarter) (*form26q.ExportResult, error) {
	f.calls = append(f.calls, period{fy, q})
	if f.err != nil {
		return nil, f.err
	}
	return &form26q.ExportResult{XMLPath: "a.xml", PDFPath: "a.pdf"}, nil
}

func newJob(exp Exporter, now time.Time) *Form26QJob {
	j := NewForm26QJob(exp, fiscal.NewCalendar(fiscal.IST), logger.Nop())
	j.clock = func() time.Time { return now }
	return j
}

// ──────────────────────────────────────────────────────────────────────────────
// Handler
// ──────────────────────────────────────────────────────────────────────────────

func TestHandle_PeriodoExplicito(t *testing.T) {
	exp := &fakeExporter{}
	task, err := NewForm26QTask(fiscal.FinancialYear{StartYear: 2024}, fiscal.Q2)
	require.NoError(t, err)
	assert.Equal(t, TaskForm26QGenerate, task.Type())

	require.NoError(t, newJob(exp, time.Now()).Handle(context.Background(), task))
	require.Len(t, exp.calls, 1)
	assert.Equal(t, "2024-25", exp.calls[0].fy.String())
	assert.Equal(t, fiscal.Q2, exp.calls[0].q)
}

func TestHandle_CronGeneraElTrimestreAnterior(t *testing.T) {
	exp := &fakeExporter{}
	now := time.Date(2025, time.April, 1, 6, 0, 0, 0, fiscal.IST)

	require.NoError(t, newJob(exp, now).Handle(context.Background(), newPreviousQuarterTask()))
	require.Len(t, exp.calls, 1)
	assert.Equal(t, "2024-25", exp.calls[0].fy.String())
	assert.Equal(t, fiscal.Q4, exp.calls[0].q)
}

func TestHandle_PayloadInvalidoNoSeReintenta(t *testing.T) {
	exp := &fakeExporter{}
	job := newJob(exp, time.Now())

	err := job.Handle(context.Background(), asynq.NewTask(TaskForm26QGenerate, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskForm26QGenerate, []byte(`{"financial_year":"2024-26","quarter":"Q1"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.True(t, isSkipRetry(err))

	err = job.Handle(context.Background(), asynq.NewTask(TaskForm26QGenerate, []byte(`{"financial_year":"2024-25","quarter":"Q9"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, exp.calls)
}

func TestHandle_FallaDelExportSeReintenta(t *testing.T) {
	boom := errors.New("disco lleno")
	task, err := NewForm26QTask(fiscal.FinancialYear{StartYear: 2024}, fiscal.Q1)
	require.NoError(t, err)

	err = newJob(&fakeExporter{err: boom}, time.Now()).Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.False(t, isSkipRetry(err))
}

func TestIsSkipRetry_EntradaInvalida(t *testing.T) {
	assert.True(t, isSkipRetry(domain.ErrInvalidInput))
	assert.False(t, isSkipRetry(errors.New("otro")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cliente (miniredis)
// ──────────────────────────────────────────────────────────────────────────────

func TestEnqueueForm26Q_NoDuplicaPeriodoPendiente(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()
	fy := fiscal.FinancialYear{StartYear: 2024}

	id, queue, err := c.EnqueueForm26Q(ctx, fy, fiscal.Q3)
	require.NoError(t, err)
	assert.Equal(t, "form26q:2024-25:Q3", id)
	assert.Equal(t, QueueDefault, queue)

	_, _, err = c.EnqueueForm26Q(ctx, fy, fiscal.Q3)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, _, err = c.EnqueueForm26Q(ctx, fy, fiscal.Q4)
	assert.NoError(t, err)
}
