// Package jobs genera el Form 26Q en segundo plano con asynq.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/domain"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

const (
	// QueueDefault cola de tareas de reportes.
	QueueDefault = "default"
	// TaskForm26QGenerate genera y guarda el Form 26Q de un trimestre.
	TaskForm26QGenerate = "form26q:generate"
	// CronPreviousQuarter primer día de cada trimestre fiscal a las 06:00 (zona del calendario).
	CronPreviousQuarter = "0 6 1 1,4,7,10 *"
)

// Form26QPayload período a generar. Vacío = trimestre anterior a la fecha de ejecución.
type Form26QPayload struct {
	FinancialYear string `json:"financial_year,omitempty"`
	Quarter       string `json:"quarter,omitempty"`
}

// NewForm26QTask construye la tarea para un período explícito.
func NewForm26QTask(fy fiscal.FinancialYear, q fiscal.Quarter) (*asynq.Task, error) {
	data, err := json.Marshal(Form26QPayload{FinancialYear: fy.String(), Quarter: q.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskForm26QGenerate, data), nil
}

// newPreviousQuarterTask tarea del cron: el período se resuelve al ejecutarse.
func newPreviousQuarterTask() *asynq.Task {
	return asynq.NewTask(TaskForm26QGenerate, []byte(`{}`))
}

// Exporter genera y guarda el reporte del trimestre.
type Exporter interface {
	Export(ctx context.Context, fy fiscal.FinancialYear, q fiscal.Quarter) (*form26q.ExportResult, error)
}

// Form26QJob handler de TaskForm26QGenerate.
type Form26QJob struct {
	exporter Exporter
	cal      fiscal.Calendar
	log      *logger.Logger
	clock    func() time.Time
}

// NewForm26QJob construye el handler.
func NewForm26QJob(exporter Exporter, cal fiscal.Calendar, log *logger.Logger) *Form26QJob {
	return &Form26QJob{exporter: exporter, cal: cal, log: log.Component("form26q_job"), clock: time.Now}
}

// Handle genera el período del payload. Payload o período inválidos no se reintentan.
func (j *Form26QJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.exporter == nil {
		return errors.New("form26q job: handler no configurado")
	}
	var payload Form26QPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	fy, q, err := j.period(payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	start := j.clock()
	res, err := j.exporter.Export(ctx, fy, q)
	if err != nil {
		j.log.Error().Err(err).Str("financial_year", fy.String()).Str("quarter", q.String()).Msg("falló la generación del Form 26Q")
		return err
	}
	j.log.Info().Str("financial_year", fy.String()).Str("quarter", q.String()).
		Str("xml_path", res.XMLPath).Str("pdf_path", res.PDFPath).
		Dur("duration", time.Since(start)).Msg("Form 26Q generado")
	return nil
}

func (j *Form26QJob) period(p Form26QPayload) (fiscal.FinancialYear, fiscal.Quarter, error) {
	if p.FinancialYear == "" && p.Quarter == "" {
		fy, q := j.cal.PreviousQuarter(j.clock())
		return fy, q, nil
	}
	fy, err := fiscal.ParseFinancialYear(p.FinancialYear)
	if err != nil {
		return fiscal.FinancialYear{}, 0, err
	}
	q, err := fiscal.ParseQuarter(p.Quarter)
	if err != nil {
		return fiscal.FinancialYear{}, 0, err
	}
	return fy, q, nil
}

// isSkipRetry indica si el error descarta la tarea sin reintentos.
func isSkipRetry(err error) bool {
	return errors.Is(err, asynq.SkipRetry) || errors.Is(err, domain.ErrInvalidInput)
}
