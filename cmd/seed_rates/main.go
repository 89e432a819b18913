// seed_rates agrega tarifas de metal desde una planilla CSV (UTF-8, Windows-1252 o ISO-8859-1).
//
// Uso: go run ./cmd/seed_rates -file tarifas.csv [-encoding windows-1252] [-dry-run]
// Columnas: metal_id, purity_id, rate_per_gram, effective_date. Las filas se agregan; nunca
// modifican tarifas existentes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/joyeria-api/internal/application/rates"
	"github.com/jhoicas/joyeria-api/internal/domain/fiscal"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/joyeria-api/internal/infrastructure/ratesheet"
	"github.com/jhoicas/joyeria-api/pkg/config"
	"github.com/jhoicas/joyeria-api/pkg/logger"
)

func main() {
	file := flag.String("file", "tarifas.csv", "planilla CSV de tarifas")
	encoding := flag.String("encoding", ratesheet.EncodingUTF8, "utf-8 | windows-1252 | iso-8859-1")
	dryRun := flag.Bool("dry-run", false, "solo validar la planilla")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	cal := fiscal.NewCalendar(cfg.Calendar.Location())

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir planilla: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := ratesheet.Parse(f, *encoding, cal.Location())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Planilla inválida:\n%v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		fmt.Printf("%d filas válidas en %s\n", len(rows), *file)
		return
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, logger.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar esquema: %v\n", err)
		os.Exit(1)
	}

	// Sin caché: el API la invalida por TTL o con la próxima alta por HTTP.
	uc := rates.NewLookupUseCase(postgres.NewRateRepository(pool), nil, cal, logger.Nop())
	for _, row := range rows {
		if _, err := uc.AddMetalRate(ctx, rates.AddMetalRateInput{
			MetalID:       row.MetalID,
			PurityID:      row.PurityID,
			RatePerGram:   row.RatePerGram,
			EffectiveDate: row.EffectiveDate,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Línea %d: %v\n", row.Line, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Agregadas %d tarifas desde %s\n", len(rows), *file)
}
