package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/mmcdole/xcview/internal/config"
	"github.com/mmcdole/xcview/internal/log"
)

// Version is set at build time via -ldflags
var Version = "dev"

// options are the global flags shared by every command
type options struct {
	configPath string
	profile    string
	noPersist  bool
	stats      bool
}

func main() {
	// A .env file is optional; its values feed the XCVIEW_* overrides
	_ = godotenv.Load()

	var opts options
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/xcview/config.yaml)")
	flag.StringVar(&opts.profile, "profile", "", "run as this profile without switching")
	flag.BoolVar(&opts.noPersist, "no-persist", false, "keep state in memory only")
	flag.BoolVar(&opts.stats, "stats", false, "print catalog cache counters after the command")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("xcview %s\n", Version)
		return
	}

	if err := run(opts, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, render(ErrorStyle, "Error: "+err.Error()))
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(opts options, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.noPersist {
		cfg.Store.NoPersist = true
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting xcview", "version", Version, "command", args[0])

	if cmd.needsAccount && !cfg.IsConfigured() {
		return errors.New("no profiles configured, run: xcview profile add <name> <url> <username>")
	}

	a, err := newApp(cfg, opts, logger)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		logger.Error("command failed", "command", args[0], "error", err)
		return err
	}
	if opts.stats {
		a.printStats()
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfigFrom(path)
	}
	return config.LoadConfig()
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: xcview [flags] <command> [args]

Commands:
  profiles                          list profiles
  profile switch <name>             make <name> the active profile
  profile add <name> <url> <user>   add an Xtream account (password is prompted)
  categories [-all] [-filter q] <type>
  items [-category id] <type>
  info <type> <id>
  search [-more n] <query>
  url <type> <id> [extension]
  bucket list | bucket toggle <type> <id>
  hide <type> <category-id>...
  show <type> <category-id>...

Types: live, movie, series

Flags:
`)
	flag.PrintDefaults()
}
