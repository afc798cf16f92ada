package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nooshload/internal/collector"
	"nooshload/internal/config"
)

// The profile subcommands are thin configuration records: concurrency shape,
// session-sharing mode, and thresholds. All orchestration lives in run.go.

func newRunCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a YAML-defined load profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			// Global flags beat file values when set explicitly.
			if cmd.Flags().Changed("env") {
				cfg.Environment = opts.env
			}
			if cmd.Flags().Changed("user") {
				cfg.UserKey = opts.userKey
			}
			if cmd.Flags().Changed("user-file") {
				cfg.UserFile = opts.userFile
				cfg.UserFileMode = config.Mode(opts.userFileMode)
			}
			if !cfg.LoadProfile.Validate() && cfg.Execution.MaxIterations == 0 {
				return fmt.Errorf("config needs a valid loadProfile or execution.max_iterations")
			}
			return executeRun("run", cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newSmokeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Single actor, single iteration: authenticate, create project, create spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := baseConfig()
			cfg.LoadProfile = config.ConstantProfile(1, 2*time.Minute)
			cfg.Execution.MaxIterations = 1
			cfg.WithSpec = true
			cfg.VerifyAccount = true
			cfg.Thresholds = &collector.Thresholds{
				HTTPReqFailed:   &collector.FailureThresholds{Rate: "1%"},
				HTTPReqDuration: &collector.DurationThresholds{P95: 15 * time.Second},
				Checks:          &collector.CheckThresholds{Rate: "90%"},
			}
			return executeRun("smoke", cfg)
		},
	}
	return cmd
}

func newAuthCommand() *cobra.Command {
	var actors int
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication-focused load: every actor runs the full delegation flow per iteration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := baseConfig()
			cfg.LoadProfile = config.ConstantProfile(actors, duration)
			cfg.AuthOnly = true
			cfg.Thresholds = &collector.Thresholds{
				HTTPReqFailed:   &collector.FailureThresholds{Rate: "5%"},
				HTTPReqDuration: &collector.DurationThresholds{P95: 3 * time.Second},
				Checks:          &collector.CheckThresholds{Rate: "90%"},
			}
			return executeRun("auth", cfg)
		},
	}
	cmd.Flags().IntVar(&actors, "actors", 10, "concurrent actors")
	cmd.Flags().DurationVar(&duration, "duration", 2*time.Minute, "test duration")
	return cmd
}

func newLoadCommand() *cobra.Command {
	var actors int
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Sustained normal load with a shared session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := baseConfig()
			cfg.LoadProfile = config.ConstantProfile(actors, duration)
			cfg.SharedSession = true
			cfg.WithSpec = true
			cfg.Thresholds = &collector.Thresholds{
				HTTPReqFailed:   &collector.FailureThresholds{Rate: "1%"},
				HTTPReqDuration: &collector.DurationThresholds{P95: 5 * time.Second},
				Checks:          &collector.CheckThresholds{Rate: "90%"},
				HTTPReqs:        &collector.RateThresholds{Rate: 10},
			}
			return executeRun("load", cfg)
		},
	}
	cmd.Flags().IntVar(&actors, "actors", 20, "concurrent actors")
	cmd.Flags().DurationVar(&duration, "duration", 5*time.Minute, "test duration")
	return cmd
}

func newStressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Step load beyond normal capacity: 50 to 200 actors in stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := baseConfig()
			cfg.LoadProfile = config.RampedProfile(
				config.Stage{Duration: 2 * time.Minute, Target: 50},
				config.Stage{Duration: 3 * time.Minute, Target: 50},
				config.Stage{Duration: 2 * time.Minute, Target: 100},
				config.Stage{Duration: 3 * time.Minute, Target: 100},
				config.Stage{Duration: 2 * time.Minute, Target: 150},
				config.Stage{Duration: 3 * time.Minute, Target: 150},
				config.Stage{Duration: 2 * time.Minute, Target: 200},
				config.Stage{Duration: 3 * time.Minute, Target: 200},
				config.Stage{Duration: 2 * time.Minute, Target: 0},
			)
			cfg.SharedSession = true
			cfg.WithSpec = true
			cfg.Thresholds = &collector.Thresholds{
				HTTPReqFailed:   &collector.FailureThresholds{Rate: "5%"},
				HTTPReqDuration: &collector.DurationThresholds{P95: 10 * time.Second},
				Checks:          &collector.CheckThresholds{Rate: "85%"},
			}
			return executeRun("stress", cfg)
		},
	}
	return cmd
}

func newSpikeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spike",
		Short: "Normal traffic with a sudden burst to 100 actors and recovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := baseConfig()
			cfg.LoadProfile = config.RampedProfile(
				config.Stage{Duration: time.Minute, Target: 20},
				config.Stage{Duration: 2 * time.Minute, Target: 20},
				config.Stage{Duration: 30 * time.Second, Target: 100},
				config.Stage{Duration: 3 * time.Minute, Target: 100},
				config.Stage{Duration: 30 * time.Second, Target: 20},
				config.Stage{Duration: 2 * time.Minute, Target: 20},
				config.Stage{Duration: time.Minute, Target: 0},
			)
			cfg.SharedSession = true
			cfg.WithSpec = true
			cfg.Thresholds = &collector.Thresholds{
				HTTPReqFailed:   &collector.FailureThresholds{Rate: "3%"},
				HTTPReqDuration: &collector.DurationThresholds{P95: 15 * time.Second},
				Checks:          &collector.CheckThresholds{Rate: "85%"},
			}
			return executeRun("spike", cfg)
		},
	}
	return cmd
}

func newSoakCommand() *cobra.Command {
	var actors int
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Extended-duration load with a shared session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := baseConfig()
			cfg.LoadProfile = config.ConstantProfile(actors, duration)
			cfg.SharedSession = true
			cfg.WithSpec = true
			cfg.Thresholds = &collector.Thresholds{
				HTTPReqFailed:   &collector.FailureThresholds{Rate: "1%"},
				HTTPReqDuration: &collector.DurationThresholds{P95: 15 * time.Second},
				Checks:          &collector.CheckThresholds{Rate: "95%"},
			}
			return executeRun("soak", cfg)
		},
	}
	cmd.Flags().IntVar(&actors, "actors", 30, "concurrent actors")
	cmd.Flags().DurationVar(&duration, "duration", 2*time.Hour, "test duration")
	return cmd
}

// baseConfig seeds a profile config with the shared CLI options.
func baseConfig() *config.Config {
	cfg := &config.Config{
		Environment:  opts.env,
		UserKey:      opts.userKey,
		UserFile:     opts.userFile,
		UserFileMode: config.Mode(opts.userFileMode),
	}
	cfg.Defaults()
	return cfg
}
