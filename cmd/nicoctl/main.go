package main

import (
	"fmt"
	"os"

	"NicoQuitService/pkg/logger"

	"github.com/alecthomas/kong"
)

var CLI struct {
	Version kong.VersionFlag
	Verbose bool `help:"Write debug logs to stderr." short:"v"`

	Migrate MigrateCmd `cmd:"" help:"Apply database migrations."`
	Seed    SeedCmd    `cmd:"" help:"Seed the achievements catalog and the demo user."`
	Token   TokenCmd   `cmd:"" help:"Issue an access token signed with auth.jwt_secret."`
	Stats   StatsCmd   `cmd:"" help:"Show quit progress for a user."`
	Pet     PetCmd     `cmd:"" help:"Show pet state for a user."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("nicoctl"),
		kong.Description("Operations tool for the NicoQuit service"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	level := "warn"
	if CLI.Verbose {
		level = "debug"
	}

	appCtx := &Context{
		Logger: logger.New(logger.Options{Level: level}, os.Stderr),
		Out:    os.Stdout,
	}
	defer func() { _ = appCtx.Logger.Sync() }()

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
