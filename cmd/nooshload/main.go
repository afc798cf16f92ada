// Command nooshload drives synthetic load against the Noosh API. Each named
// load profile is a subcommand; `run` executes an arbitrary YAML-defined
// profile.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	ExitSuccess         = 0
	ExitThresholdFailed = 1
	ExitError           = 2
)

type rootOptions struct {
	env          string
	userKey      string
	userFile     string
	userFileMode string
	output       string
	reportDir    string
	quiet        bool
	verbose      bool
	noThreshold  bool
}

var opts rootOptions

func main() {
	// A .env file can carry NOOSH_ENV / NOOSH_USER for local runs.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "nooshload",
		Short:         "Load generator for the Noosh multi-tenant API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.env, "env", envOr("NOOSH_ENV", "qa2"), "target environment (qa2, qa3, sqa)")
	pf.StringVar(&opts.userKey, "user", envOr("NOOSH_USER", "standard"), "actor credentials key (standard, admin)")
	pf.StringVar(&opts.userFile, "user-file", "", "CSV or JSON file of actor credentials")
	pf.StringVar(&opts.userFileMode, "user-file-mode", "sequential", "user file iteration mode: sequential, random")
	pf.StringVar(&opts.output, "output", "text", "output format: text, json")
	pf.StringVar(&opts.reportDir, "report-dir", "", "write summary and raw-event reports into this directory")
	pf.BoolVar(&opts.quiet, "quiet", false, "suppress progress output during the run")
	pf.BoolVar(&opts.verbose, "verbose", false, "enable request/response wire logging")
	pf.BoolVar(&opts.noThreshold, "no-threshold-exit", false, "exit 0 even when thresholds fail")

	root.AddCommand(
		newRunCommand(),
		newSmokeCommand(),
		newAuthCommand(),
		newLoadCommand(),
		newStressCommand(),
		newSpikeCommand(),
		newSoakCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildLogger returns the run's structured logger: production JSON by
// default, console debug under --verbose.
func buildLogger() *zap.Logger {
	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
