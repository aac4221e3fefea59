// Package app wires configuration, logging, telemetry and the stage manager
// into a single run and maps its outcome to a process exit status.
//
// Every binary under cmd/ follows the same flow:
//
//	flags := app.BindFlags(flag.CommandLine)
//	// stage-specific flags ...
//	flag.Parse()
//	cfg, err := flags.Load(operations.StageIDSalary)
//	// apply stage-specific flags to cfg.Pipeline
//	os.Exit(app.Main(cfg))
package app
