package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	votingbooth "agora/contexts/governance/voting-booth"
	"agora/contexts/governance/voting-booth/adapters/remote"
	"agora/internal/platform/config"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const programName = "agora-booth"

var globalFlags = struct {
	debug        bool
	configFile   string
	electionID   string
	identity     string
	apiURL       string
	pollInterval time.Duration
	callTimeout  time.Duration
}{}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if globalFlags.debug {
		level = slog.LevelDebug
	}
	// The console owns stdout, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: globalFlags.debug,
		Level:     level,
	}))
	slog.SetDefault(logger)
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...any) {
		logger.Debug(fmt.Sprintf(format, v...), "component", programName)
	})); err != nil {
		logger.Warn("set GOMAXPROCS failed", "component", programName, "error", err.Error())
	}
	return logger
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           programName,
		Short:         "Interactive voting booth for one voter in one election",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFile(globalFlags.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyConfigDefaults(cmd, cfg)
			if globalFlags.electionID == "" || globalFlags.identity == "" {
				return fmt.Errorf("--election and --identity are required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBooth(ctx, newLogger())
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	flags.StringVar(&globalFlags.configFile, "config", "", "path to config file")
	flags.StringVarP(&globalFlags.electionID, "election", "e", "", "election id")
	flags.StringVarP(&globalFlags.identity, "identity", "i", "", "authenticated voter identity")
	flags.StringVar(&globalFlags.apiURL, "api-url", "", "voting booth API base url")
	flags.DurationVar(&globalFlags.pollInterval, "poll-interval", 0, "active session poll interval")
	flags.DurationVar(&globalFlags.callTimeout, "call-timeout", 0, "per-call registry timeout")
	return cmd
}

// applyConfigDefaults fills every flag the user did not set from cfg.
func applyConfigDefaults(cmd *cobra.Command, cfg config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("api-url") {
		globalFlags.apiURL = cfg.APIBaseURL
	}
	if !flags.Changed("poll-interval") || globalFlags.pollInterval <= 0 {
		globalFlags.pollInterval = cfg.SessionPollInterval
	}
	if !flags.Changed("call-timeout") || globalFlags.callTimeout <= 0 {
		globalFlags.callTimeout = cfg.RemoteCallTimeout
	}
}

func runBooth(ctx context.Context, logger *slog.Logger) error {
	client := remote.NewClient(remote.Options{
		BaseURL:  globalFlags.apiURL,
		Identity: globalFlags.identity,
		Timeout:  globalFlags.callTimeout,
		Logger:   logger,
	})
	module := votingbooth.NewClientModule(nil, logger)
	console := newConsole(os.Stdin, os.Stdout)
	booth := module.NewBooth(globalFlags.electionID, globalFlags.identity, client, console)

	election, err := client.GetElection(ctx, globalFlags.electionID)
	if err != nil {
		return fmt.Errorf("load election: %w", err)
	}
	console.printf("%s (%s)\n", election.Name, election.Status)

	if err := booth.Enter(ctx); err != nil {
		// The watch loop keeps retrying entry on every tick.
		console.printf("could not enter booth yet: %v\n", err)
	}

	loopCtx, cancelLoop := context.WithCancel(ctx)
	loop := module.NewWatchLoop(booth, client, globalFlags.pollInterval)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(loopCtx) }()

	err = console.run(ctx, booth, client)
	cancelLoop()
	if loopErr := <-loopDone; loopErr != nil && err == nil {
		err = loopErr
	}
	return err
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
