// Command salary writes the median of the mean wage per (ano, setor).
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
	out := flag.String("out", "", "output file (default data/processed/salario_medio_por_setor.csv)")
	includeZeros := flag.Bool("include-zeros", false, "keep zero wages in the median")
	flag.Parse()

	cfg, err := flags.Load(operations.StageIDSalary)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(errors.ExitCode(err))
	}
	if *rais != "" {
		cfg.Pipeline.Salary.In = *rais
	}
	if *out != "" {
		cfg.Pipeline.Salary.Out = *out
	}
	if *includeZeros {
		cfg.Pipeline.Salary.IncludeZeros = true
	}

	os.Exit(app.Main(cfg))
}
