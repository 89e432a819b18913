// worker procesa la generación del Form 26Q (bajo demanda y al inicio de cada trimestre).
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	infraform26q "github.com/jhoicas/joyeria-api/internal/infrastructure/form26q"
	infrapdf "github.com/jhoicas/joyeria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/storage"
	"github.com/jhoicas/joyeria-api/internal/jobs"
	"github.com/jhoicas/joyeria-api/pkg/config"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "worker"})

	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR requerido para el worker")
	}
	if cfg.App.StorageDriver != config.StoragePostgres {
		log.Fatal().Str("storage", cfg.App.StorageDriver).Msg("el worker requiere STORAGE_DRIVER=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	cal := fiscal.NewCalendar(cfg.Calendar.Location())
	exporter := form26q.NewExportService(
		form26q.NewAggregator(postgres.NewTcsTransactionRepository(pool), cal),
		infraform26q.NewXMLBuilderService(cfg.Reports.DeductorTAN),
		infrapdf.NewForm26QGenerator(cfg.Reports.StoreName),
		storage.NewLocalStorage(cfg.Reports.StorageDir),
		log,
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		Concurrency: cfg.Worker.Concurrency,
		Calendar:    cal,
		Form26Q:     jobs.NewForm26QJob(exporter, cal, log),
		Schedule:    true,
		Logger:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	log.Info().Int("concurrency", cfg.Worker.Concurrency).Str("cron", jobs.CronPreviousQuarter).Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
