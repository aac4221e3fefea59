// Command normalize min-max scales demand and salary median within each group.
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
	in := flag.String("in", "", "market table (default data/processed/mercado_por_setor.csv)")
	out := flag.String("out", "", "output file (default data/processed/indicie_de_receptividade_do_mercado.csv)")
	groupBy := flag.String("group-by", "", "comma-separated group columns (default ano,setor; setor scales each sector across years)")
	rangeStore := flag.String("range-store", "", "keep pass-1 ranges in this SQLite file instead of memory")
	flag.Parse()

	cfg, err := flags.Load(operations.StageIDNormalize)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(errors.ExitCode(err))
	}
	if *in != "" {
		cfg.Pipeline.Normalize.In = *in
	}
	if *out != "" {
		cfg.Pipeline.Normalize.Out = *out
	}
	if cols := app.SplitList(*groupBy); len(cols) > 0 {
		cfg.Pipeline.Normalize.GroupBy = cols
	}
	if *rangeStore != "" {
		cfg.Pipeline.Normalize.RangeStore = *rangeStore
	}

	os.Exit(app.Main(cfg))
}
