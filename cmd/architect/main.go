package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/architect/internal/cli"
	"github.com/julianstephens/architect/internal/config"
	apperrors "github.com/julianstephens/architect/internal/errors"
	"github.com/julianstephens/architect/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	Config    string `help:"Config file path." type:"string" default:"" placeholder:"~/.config/architect/config.yaml"`
	DB        string `name:"db" help:"Database path or PostgreSQL connection string, overriding the config file. Credentials must NOT be embedded in the connection string; use the OS keyring, ARCHITECT_DB_CONNECTION or .pgpass instead."`
	LogDebug  bool   `name:"debug" help:"Enable debug logging."`
	Ephemeral bool   `help:"Keep everything in memory for this run."`

	Init    cli.InitCmd    `cmd:"" help:"Initialize architect storage and config."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive journal." default:"1"`
	Write   cli.WriteCmd   `cmd:"" help:"Write an entry and get The Architect's reply."`
	History cli.HistoryCmd `cmd:"" help:"List past entries."`
	Stats   cli.StatsCmd   `cmd:"" help:"Show entry count, streak and active days."`
	Profile cli.ProfileCmd `cmd:"" help:"Show or manage your profile."`
	Onboard cli.OnboardCmd `cmd:"" help:"Answer the onboarding questions."`
	Voice   cli.VoiceCmd   `cmd:"" help:"Capture an entry by voice."`
	Serve   cli.ServeCmd   `cmd:"" help:"Run the distill proxy server."`
	Export  cli.ExportCmd  `cmd:"" help:"Export entries and profile as JSON or YAML."`
	Keyring cli.KeyringCmd `cmd:"" help:"Manage secrets in the OS keyring."`
	Backup  cli.BackupCmd  `cmd:"" help:"Manage database backups."`
	Debug   cli.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
}

// These commands manage their own storage or never touch it.
var skipLoad = []string{"init", "keyring", "serve", "doctor", "debug db-path"}

func needsLoad(command string) bool {
	for _, prefix := range skipLoad {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return false
		}
	}
	return true
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("architect"),
		kong.Description("A journal with a mentor who remembers who you said you wanted to be"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	conf, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}
	if CLI.LogDebug {
		conf.Log.Debug = true
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     conf.Log.Debug,
		ConfigDir: conf.ConfigDir(),
		LogDir:    conf.Log.Dir,
		Stderr:    strings.HasPrefix(command, "serve"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := cli.NewStore(conf, CLI.DB, CLI.Ephemeral)
	if err != nil {
		apperrors.Fatal(err)
	}
	logger.Debug("Starting", "command", command, "store", store.GetConfigPath())

	appCtx := &cli.Context{
		Config: conf,
		Store:  store,
	}
	// Piped input replaces interactive prompts.
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		appCtx.In = os.Stdin
	}

	if needsLoad(command) {
		if err := store.Load(context.Background()); err != nil {
			apperrors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	apperrors.Fatal(err)
}
