package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"nooshload/internal/collector"
	"nooshload/internal/config"
	"nooshload/internal/coordinator"
	"nooshload/internal/core"
	"nooshload/internal/noosh"
	"nooshload/internal/progress"
	"nooshload/internal/ratelimit"
	"nooshload/internal/workflow"
)

// executeRun is the shared run pipeline behind every subcommand: resolve
// environment and credentials, establish the session source, drive actors
// through the load profile, then compute metrics and the threshold verdict.
func executeRun(profile string, cfg *config.Config) error {
	logger := buildLogger()
	defer logger.Sync()

	env := cfg.ResolveEnvironment(logger)

	users, err := resolveUsers(cfg, logger)
	if err != nil {
		return err
	}

	coll := collector.NewCollector()

	clientOpts := []noosh.Option{noosh.WithReporter(coll)}
	if opts.verbose {
		clientOpts = append(clientOpts, noosh.WithDebugLogger(noosh.NewDebugLogger(os.Stderr)))
	}
	client := noosh.NewClient(env, logger, clientOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sessions workflow.SessionSource
	if cfg.SharedSession {
		// One delegation flow up front; if it fails there is no point in
		// starting actors.
		u := users.Next()
		logger.Info("establishing shared session",
			zap.String("environment", env.Name),
			zap.String("user", u.Username))
		session, err := client.Authenticate(ctx, u.Username, u.Password)
		if err != nil {
			return fmt.Errorf("shared session setup: %w", err)
		}
		sessions = workflow.NewSharedSource(core.NewSharedSession(session))
	} else {
		sessions = workflow.NewDelegationSource(client, users)
	}

	rps := 0
	if cfg.LoadProfile != nil && len(cfg.LoadProfile.Phases) > 0 {
		rps = cfg.LoadProfile.Phases[0].RPS
	}
	limiter := ratelimit.NewRateLimiter(rps)

	flow := &workflow.ProjectFlow{
		Client:    client,
		EnvPrefix: env.Prefix(),
		Sessions:  sessions,
		AuthOnly:  cfg.AuthOnly,
		WithSpec:  cfg.WithSpec,
		Verify:    cfg.VerifyAccount,
		Think:     cfg.ThinkTime,
		Limiter:   limiter,
		Log:       logger,
	}

	prog := progress.NewProgress(coll, opts.quiet)
	prog.Start()

	coord := coordinator.NewCoordinator(coll)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Execution.MaxIterations > 0 {
		actors := 1
		if cfg.LoadProfile != nil && len(cfg.LoadProfile.Phases) > 0 && cfg.LoadProfile.Phases[0].Actors > 0 {
			actors = cfg.LoadProfile.Phases[0].Actors
		}
		prog.Printf("Running %s: %d actor(s), %d iteration(s) each",
			profile, actors, cfg.Execution.MaxIterations)
		coord.Spawn(runCtx, actors, flow, cfg.Runner())
		coord.Wait()
	} else {
		coord.RunWithProfile(runCtx, cfg.LoadProfile, flow, limiter, prog, cfg.Runner())
		if !coord.WaitGrace(cfg.GracefulStop) {
			logger.Warn("graceful stop timed out, cancelling in-flight iterations",
				zap.Duration("grace", cfg.GracefulStop))
			cancel()
			coord.Wait()
		}
	}

	prog.Stop()
	coll.Close()

	interrupted := ctx.Err() != nil

	m := coll.Compute()
	results := cfg.Thresholds.Check(m)

	if opts.output == "json" {
		coll.PrintJSON(os.Stdout, m, results)
	} else {
		coll.PrintText(os.Stdout, m, results)
	}

	if opts.reportDir != "" {
		report, err := collector.WriteReports(opts.reportDir, profile, m, results, coll.Events())
		if err != nil {
			logger.Error("writing reports failed", zap.Error(err))
		} else {
			logger.Info("reports written",
				zap.String("summary", report.SummaryPath),
				zap.String("events", report.EventsPath))
		}
	}

	if interrupted {
		fmt.Fprintln(os.Stderr, "run interrupted, results cover a partial run")
	}

	if !results.Passed && !opts.noThreshold {
		os.Exit(ExitThresholdFailed)
	}
	return nil
}

func resolveUsers(cfg *config.Config, logger *zap.Logger) (*config.UserPool, error) {
	if cfg.UserFile != "" {
		pool, err := config.LoadUserFile(cfg.UserFile, cfg.UserFileMode)
		if err != nil {
			return nil, fmt.Errorf("loading user file: %w", err)
		}
		logger.Info("loaded user pool",
			zap.String("file", cfg.UserFile),
			zap.Int("users", pool.Len()),
			zap.String("mode", string(cfg.UserFileMode)))
		return pool, nil
	}
	return config.SingleUserPool(cfg.ResolveUser(logger)), nil
}
