package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/google/subcommands"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
)

// runCmd implements the "run" command.
type runCmd struct {
	env          *environment
	backfillDays int
	asJSON       bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "runs one full maintenance pass" }
func (*runCmd) Usage() string {
	return `run [-backfill-days N] [-json]

Reconciles symbols, enriches classification, ingests prices into staging, validates,
promotes to production and sweeps stale symbols. Prints the run report.
The exit status is non-zero when any stage fails.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.backfillDays, "backfill-days", 0, "re-fetch the last N days instead of resuming after the latest stored bar")
	f.BoolVar(&c.asJSON, "json", false, "print the report as JSON")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.backfillDays < 0 {
		fmt.Fprintln(c.env.out, "Error: -backfill-days must not be negative")
		return subcommands.ExitUsageError
	}
	cfg, err := c.env.load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return subcommands.ExitFailure
	}
	if err := cfg.RequireProviderKeys(); err != nil {
		slog.Error("provider configuration incomplete", "error", err)
		return subcommands.ExitFailure
	}

	app, closeFn, err := c.env.open(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	rep, runErr := app.Orchestrator.Run(ctx, usecase.RunOptions{BackfillDays: c.backfillDays})
	if errors.Is(runErr, usecase.ErrRunInProgress) {
		slog.Error("maintenance run rejected", "error", runErr)
		return subcommands.ExitFailure
	}
	if err := printReport(c.env, rep, c.asJSON); err != nil {
		slog.Error("failed to print report", "error", err)
	}
	if runErr != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// reportCmd implements the "report" command.
type reportCmd struct {
	env    *environment
	asJSON bool
	live   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "prints the report of the latest run" }
func (*reportCmd) Usage() string {
	return `report [-json] [-live]

Prints the persisted report of the most recent maintenance run.
With -live, prints current symbol and price statistics instead.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "print the report as JSON")
	f.BoolVar(&c.live, "live", false, "print current statistics instead of the last run")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.env.load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return subcommands.ExitFailure
	}
	app, closeFn, err := c.env.open(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	if c.live {
		rep, err := app.Orchestrator.Snapshot(ctx)
		if err != nil {
			slog.Error("failed to read statistics", "error", err)
			return subcommands.ExitFailure
		}
		if err := printReport(c.env, rep, c.asJSON); err != nil {
			slog.Error("failed to print report", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	rep, err := app.Reports.LatestReport(ctx)
	if errors.Is(err, usecase.ErrNoRuns) {
		fmt.Fprintln(c.env.out, "no maintenance runs recorded")
		return subcommands.ExitSuccess
	}
	if err != nil {
		slog.Error("failed to load latest report", "error", err)
		return subcommands.ExitFailure
	}
	if err := printReport(c.env, rep, c.asJSON); err != nil {
		slog.Error("failed to print report", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// reenableCmd implements the "reenable" command.
type reenableCmd struct {
	env *environment
}

func (*reenableCmd) Name() string     { return "reenable" }
func (*reenableCmd) Synopsis() string { return "removes tickers from the excluded-ticker cache" }
func (*reenableCmd) Usage() string {
	return `reenable TICKER...

Deletes the excluded-ticker entries so the next run considers the tickers again.
`
}

func (*reenableCmd) SetFlags(*flag.FlagSet) {}

func (c *reenableCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(c.env.out, "Error: at least one ticker is required")
		return subcommands.ExitUsageError
	}
	cfg, err := c.env.load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return subcommands.ExitFailure
	}
	app, closeFn, err := c.env.open(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	n, err := app.Exclusions.Reenable(ctx, f.Args())
	if err != nil {
		slog.Error("failed to re-enable tickers", "error", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.env.out, "re-enabled %d ticker(s)\n", n)
	return subcommands.ExitSuccess
}

// excludedCmd implements the "excluded" command.
type excludedCmd struct {
	env *environment
}

func (*excludedCmd) Name() string     { return "excluded" }
func (*excludedCmd) Synopsis() string { return "lists the excluded-ticker cache" }
func (*excludedCmd) Usage() string {
	return `excluded

Lists every excluded ticker with its reason and when it was excluded.
`
}

func (*excludedCmd) SetFlags(*flag.FlagSet) {}

func (c *excludedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.env.load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return subcommands.ExitFailure
	}
	app, closeFn, err := c.env.open(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return subcommands.ExitFailure
	}
	defer closeFn()

	list, err := app.Exclusions.List(ctx)
	if err != nil {
		slog.Error("failed to list excluded tickers", "error", err)
		return subcommands.ExitFailure
	}
	for _, e := range list {
		fmt.Fprintf(c.env.out, "%-10s %-18s %s\n", e.Ticker, e.Reason, e.CreatedAt.UTC().Format("2006-01-02"))
	}
	fmt.Fprintf(c.env.out, "%d excluded ticker(s)\n", len(list))
	return subcommands.ExitSuccess
}

func printReport(env *environment, rep entity.Report, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprint(env.out, rep.Render())
		return err
	}
	enc := json.NewEncoder(env.out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
