// Command maintain runs the market data maintenance pipeline and inspects its results.
//
//	maintain [-config config.yaml] run [-backfill-days N] [-json]
//	maintain report [-json]
//	maintain reenable TICKER...
//	maintain excluded
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	configPath := flag.String("config", envOr("MAINTAIN_CONFIG", "config.yaml"), "path to the YAML configuration file")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := &environment{configPath: configPath, out: os.Stdout, open: openApp}
	commander.Register(&runCmd{env: env}, "maintenance")
	commander.Register(&reportCmd{env: env}, "maintenance")
	commander.Register(&reenableCmd{env: env}, "excluded tickers")
	commander.Register(&excludedCmd{env: env}, "excluded tickers")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commander.Execute(ctx)
	stop()
	os.Exit(int(code))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
