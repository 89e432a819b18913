package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/joyeria-api/internal/application/catalog"
	"github.com/jhoicas/joyeria-api/internal/application/exchange"
	"github.com/jhoicas/joyeria-api/internal/application/form26q"
	"github.com/jhoicas/joyeria-api/internal/application/pricing"
	"github.com/jhoicas/joyeria-api/internal/application/rates"
	"github.com/jhoicas/joyeria-api/internal/application/sales"
	"github.com/jhoicas/joyeria-api/internal/application/tcs"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/domain/repository"
	domaintcs "github.com/jhoicas/joyeria-api/internal/domain/tcs"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/cache"
	infraform26q "github.com/jhoicas/joyeria-api/internal/infrastructure/form26q"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/joyeria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/joyeria-api/internal/interfaces/http"
	"github.com/jhoicas/joyeria-api/internal/jobs"
	"github.com/jhoicas/joyeria-api/pkg/config"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

// stores repositorios y runner del driver elegido.
type stores struct {
	customers repository.CustomerRepository
	purities  repository.PurityRepository
	rates     repository.RateRepository
	states    repository.TcsStateRepository
	txns      repository.TcsTransactionRepository
	exchanges repository.ExchangeRepository
	runner    interface {
		tcs.TxRunner
		exchange.TxRunner
	}
	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	cal := fiscal.NewCalendar(cfg.Calendar.Location())

	// Caché de tarifas y cola de trabajos: solo si hay Redis configurado.
	var rateCache rates.Cache
	var enqueuer httpRouter.Form26QEnqueuer
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		rateCache = cache.NewRedisCache(rdb, cfg.Redis.RateTTL)

		jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer jobClient.Close()
		enqueuer = jobClient
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: sin caché de tarifas ni cola de Form 26Q")
	}

	ratesUC := rates.NewLookupUseCase(st.rates, rateCache, cal, log)
	pricingUC := pricing.NewUseCase(ratesUC, st.purities, log)
	ledger, err := tcs.NewLedger(
		st.runner, st.states,
		tcs.NewCustomerExemptionPolicy(st.customers),
		tcs.NewCustomerPANRegistry(st.customers),
		cal,
		tcs.Config{
			Rates: domaintcs.Rates{
				Threshold:      cfg.TCS.Threshold,
				RateWithPAN:    cfg.TCS.RateWithPAN,
				RateWithoutPAN: cfg.TCS.RateWithoutPAN,
			},
			MaxRetries: cfg.TCS.MaxRetries,
		},
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar ledger TCS")
	}
	checkoutUC := sales.NewCheckoutUseCase(pricingUC, ledger, log)
	exchangeUC := exchange.NewUseCase(st.runner, st.exchanges, st.purities, ratesUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Joyería API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CustomerUC:  catalog.NewCustomerUseCase(st.customers),
		PurityUC:    catalog.NewPurityUseCase(st.purities),
		RatesUC:     ratesUC,
		PricingUC:   pricingUC,
		CheckoutUC:  checkoutUC,
		ExchangeUC:  exchangeUC,
		Ledger:      ledger,
		Form26Q:     form26q.NewAggregator(st.txns, cal),
		Form26QXML:  infraform26q.NewXMLBuilderService(cfg.Reports.DeductorTAN),
		Form26QPDF:  infrapdf.NewForm26QGenerator(cfg.Reports.StoreName),
		Form26QJobs: enqueuer,
		Calendar:    cal,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStores abre PostgreSQL (aplicando el esquema) o el store en memoria.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.App.StorageDriver == config.StorageMemory {
		s := memory.NewStore()
		return &stores{
			customers: memory.NewCustomerRepository(s),
			purities:  memory.NewPurityRepository(s),
			rates:     memory.NewRateRepository(s),
			states:    memory.NewTcsStateRepository(s),
			txns:      memory.NewTcsTransactionRepository(s),
			exchanges: memory.NewExchangeRepository(s),
			runner:    memory.NewTxRunner(s),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &stores{
		customers: postgres.NewCustomerRepository(pool),
		purities:  postgres.NewPurityRepository(pool),
		rates:     postgres.NewRateRepository(pool),
		states:    postgres.NewTcsStateRepository(pool),
		txns:      postgres.NewTcsTransactionRepository(pool),
		exchanges: postgres.NewExchangeRepository(pool),
		runner:    postgres.NewTxRunner(pool),
		close:     pool.Close,
	}, nil
}
