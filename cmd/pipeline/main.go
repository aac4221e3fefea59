// Command pipeline runs every stage in order: merge, employability, demand,
// salary, market, normalize.
package main

import (
	"flag"
	"log/slog"
	"os"

	"raisetl/internal/app"
	"raisetl/internal/errors"
)

func main() {
	flags := app.BindFlags(flag.CommandLine)
	stages := flag.String("stages", "", "comma-separated subset of stages to run")
	flag.Parse()

	cfg, err := flags.Load(app.SplitList(*stages)...)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(errors.ExitCode(err))
	}

	os.Exit(app.Main(cfg))
}
