package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// Worker servidor asynq y scheduler del cron trimestral.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// WorkerConfig dependencias del worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Calendar    fiscal.Calendar
	Form26Q     *Form26QJob
	// Schedule registra el cron del trimestre anterior.
	Schedule bool
	Logger   *logger.Logger
}

// NewWorker construye el worker.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Form26Q == nil {
		return nil, errors.New("worker: handler Form 26Q requerido")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	log := cfg.Logger.Component("worker")
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
		IsFailure: func(err error) bool { return !isSkipRetry(err) },
		Logger:    asynqLogger{log: log},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskForm26QGenerate, cfg.Form26Q.Handle)

	var scheduler *asynq.Scheduler
	if cfg.Schedule {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: cfg.Calendar.Location()})
		if _, err := scheduler.Register(CronPreviousQuarter, newPreviousQuarterTask(), asynq.Queue(QueueDefault)); err != nil {
			return nil, err
		}
	}
	return &Worker{server: srv, mux: mux, scheduler: scheduler, log: log}, nil
}

// Run procesa tareas hasta que se cancele ctx.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: no configurado")
	}
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			w.server.Shutdown()
			return err
		}
	}
	w.log.Info().Msg("worker iniciado")

	<-ctx.Done()
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	w.log.Info().Msg("worker detenido")
	return nil
}

// asynqLogger adapta el logger de la app a asynq.Logger.
type asynqLogger struct {
	log *logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
