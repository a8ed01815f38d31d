package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"snapfeed/config"
	"snapfeed/misc"
	"snapfeed/replay"
	"snapfeed/state"
	"snapfeed/tui"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if cmd.Args().First() == "view" {
		// terminal belongs to the viewer
		env.Cfg.Logging.ConsoleLogger.Level = config.LogLevelNone
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// store copy goes into report, so it has to be closed first
	if er := env.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close preload store: %w", er))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := env.Cfg.Logging.PanicLogName()
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Ignore urfave/cli default error handling, subcommands return regular errors.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		// console logging is off while viewer owns terminal
		errWasHandled = env.Cfg == nil || env.Cfg.Logging.ConsoleLogger.Level != config.LogLevelNone
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {

	// allow graceful shutdown on interrupt, long replays and viewer observe
	// context
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "snap paging feed controller: trace replay, interactive viewer and preload cache tools",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "replay",
				Usage:        "Replays recorded scroll traces and checks their expectations",
				OnUsageError: usageErrorHandler,
				Action:       replay.Run,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "strict", Aliases: []string{"s"}, Usage: "treat failed expectations as errors"},
					&cli.BoolFlag{Name: "timeline", Aliases: []string{"t"}, Usage: "print timeline of every replayed trace to STDOUT"},
					&cli.StringFlag{Name: "export", Aliases: []string{"e"}, Usage: "write timeline of every replayed trace to `DIRECTORY`"},
				},
				ArgsUsage: "SOURCE [SOURCE...]",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to trace file(s) to replay, following formats are supported:
        path to a file: "[path_to_file]trace.yaml"
        path to a directory: "[path_to_directory]directory" - recursively replay all traces and archives under directory
        path to archive: "[path_to_archive]traces.zip" - replay all traces in archive

	Traces are replayed in natural order of their names, processing of
	archives inside archives is not supported.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "view",
				Usage:        "Runs interactive terminal feed driven by keyboard",
				OnUsageError: usageErrorHandler,
				Action:       runViewer,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "items", Aliases: []string{"n"}, Usage: "number of posts in feed, overrides configuration"},
					&cli.IntFlag{Name: "video", Usage: "every `N`-th post carries video, overrides configuration", Value: -1},
				},
			},
			{
				Name:  "cache",
				Usage: "Inspects and maintains persistent preload store",
				Commands: []*cli.Command{
					{
						Name:         "stats",
						Usage:        "Shows preload store content",
						OnUsageError: usageErrorHandler,
						Action:       cacheStats,
					},
					{
						Name:         "prune",
						Usage:        "Removes expired and excess entries from preload store",
						OnUsageError: usageErrorHandler,
						Action:       cachePrune,
					},
				},
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values wich is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func runViewer(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("viewer requires interactive terminal")
	}
	cfg := *env.Cfg
	if n := cmd.Int("items"); n > 0 {
		cfg.Viewer.Items = n
	}
	if n := cmd.Int("video"); n >= 0 {
		cfg.Viewer.VideoEvery = n
	}
	if err := env.OpenStore(); err != nil {
		return err
	}

	log := env.Log.Named("view")
	log.Info("Viewer starting", zap.Int("items", cfg.Viewer.Items), zap.Bool("store", env.Store != nil))
	defer func(start time.Time) {
		log.Info("Viewer finished", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if env.Store != nil {
		return tui.Run(ctx, &cfg, env.Store, log)
	}
	return tui.Run(ctx, &cfg, nil, log)
}

func openStore(env *state.LocalEnv) error {
	if err := env.OpenStore(); err != nil {
		return err
	}
	if env.Store == nil {
		return errors.New("preload store is disabled in configuration")
	}
	return nil
}

func cacheStats(ctx context.Context, _ *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if err := openStore(env); err != nil {
		return err
	}
	st, err := env.Store.Stats(time.Now())
	if err != nil {
		return fmt.Errorf("unable to read preload store: %w", err)
	}
	env.Log.Info("Preload store",
		zap.String("path", env.Cfg.Store.Path),
		zap.Int("entries", st.Entries),
		zap.Int("expired", st.Expired),
		zap.Time("oldest", st.Oldest),
		zap.Time("newest", st.Newest))
	return nil
}

func cachePrune(ctx context.Context, _ *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if err := openStore(env); err != nil {
		return err
	}
	n, err := env.Store.Prune(time.Now())
	if err != nil {
		return fmt.Errorf("unable to prune preload store: %w", err)
	}
	env.Log.Info("Preload store pruned", zap.String("path", env.Cfg.Store.Path), zap.Int("removed", n))
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()

	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
