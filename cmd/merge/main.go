// Command merge joins the consolidated RAIS extract to the CNAE sector map.
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
	rais := flag.String("rais", "", "consolidated RAIS extract (default data/raw/rais-combinado.csv)")
	cnaes := flag.String("cnaes", "", "CNAE to sector map (default data/raw/cnaes_unicos.csv)")
	out := flag.String("out", "", "joined output file (default data/processed/rais_com_cnaes_setor.csv)")
	flag.Parse()

	cfg, err := flags.Load(operations.StageIDMerge)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(errors.ExitCode(err))
	}
	if *rais != "" {
		cfg.Pipeline.Merge.Rais = *rais
	}
	if *cnaes != "" {
		cfg.Pipeline.Merge.Cnaes = *cnaes
	}
	if *out != "" {
		cfg.Pipeline.Merge.Out = *out
	}

	os.Exit(app.Main(cfg))
}
