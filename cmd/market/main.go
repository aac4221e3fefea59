// Command market outer-joins the employability, demand and salary tables.
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
	employability := flag.String("employability", "", "employability table")
	demand := flag.String("demand", "", "demand table")
	salary := flag.String("salary", "", "salary median table")
	out := flag.String("out", "", "output file (default data/processed/mercado_por_setor.csv)")
	xlsx := flag.String("xlsx", "", "also write the table as an Excel workbook")
	flag.Parse()

	cfg, err := flags.Load(operations.StageIDMarket)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(errors.ExitCode(err))
	}
	if *employability != "" {
		cfg.Pipeline.Employability.Out = *employability
	}
	if *demand != "" {
		cfg.Pipeline.Demand.Out = *demand
	}
	if *salary != "" {
		cfg.Pipeline.Salary.Out = *salary
	}
	if *out != "" {
		cfg.Pipeline.Market.Out = *out
	}
	if *xlsx != "" {
		cfg.Pipeline.Market.XLSXOut = *xlsx
	}

	os.Exit(app.Main(cfg))
}
