// Command employability sums employment per (ano, setor) and derives
// employability from the yearly unemployment rate.
package main

import (
	"flag"
	"log/slog"
	"os"

	"raisetl/internal/app"
	"raisetl/internal/errors"
	"raisetl/internal/operations"
)

func main() {
	flags := app.BindFlags(flag.CommandLine)
	rais := flag.String("rais", "", "joined extract (default data/processed/rais_com_cnaes_setor.csv)")
	desemp := flag.String("desemp", "", "unemployment rate table, .json or .csv (default data/raw/desocupacao.json)")
	out := flag.String("out", "", "output file (default data/processed/empregabilidade_por_setor.csv)")
	flag.Parse()

	cfg, err := flags.Load(operations.StageIDEmployability)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(errors.ExitCode(err))
	}
	if *rais != "" {
		cfg.Pipeline.Employability.In = *rais
	}
	if *desemp != "" {
		cfg.Pipeline.Employability.Rates = *desemp
	}
	if *out != "" {
		cfg.Pipeline.Employability.Out = *out
	}

	os.Exit(app.Main(cfg))
}
