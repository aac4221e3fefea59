// Command demand sums the opportunity gain per (ano, setor).
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
	out := flag.String("out", "", "output file (default data/processed/demanda_por_setor.csv)")
	flag.Parse()

	cfg, err := flags.Load(operations.StageIDDemand)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(errors.ExitCode(err))
	}
	if *rais != "" {
		cfg.Pipeline.Demand.In = *rais
	}
	if *out != "" {
		cfg.Pipeline.Demand.Out = *out
	}

	os.Exit(app.Main(cfg))
}
