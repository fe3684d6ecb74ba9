package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pwmledctl/internal/backend"
	"pwmledctl/internal/config"
	"pwmledctl/internal/controlloop"
	"pwmledctl/internal/logging"
	"pwmledctl/internal/mapping"
)

type options struct {
	configPath string
	backend    string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(reportFailure(os.Stderr, err))
	}
}

// reportFailure logs err and returns the process exit status for it.
func reportFailure(w io.Writer, err error) int {
	log := logging.Default(w)
	log.Error().Err(err).Msg("pwmledctl failed")
	return exitCode(err)
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "pwmledctl",
		Short:         "drive LED brightness from button press speed",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, opts, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config (optional)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "backend kind: device | sysfs | gpio")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: console | json")

	root.AddCommand(&cobra.Command{
		Use:   "probe",
		Short: "check the backend files are accessible and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return probe(opts, cmd.ErrOrStderr())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "map speed...",
		Short: "print the duty cycles for the given press speeds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return printMapping(cmd.OutOrStdout(), cfg.Mapping.Thresholds(), args)
		},
	})

	return root
}

// loadConfig reads the optional config file and applies flag overrides.
// Without a file the reference defaults are used.
func loadConfig(opts options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("config load failed: %w", err)
		}
		cfg = c
	}
	if opts.backend != "" {
		cfg.Backend.Kind = opts.backend
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if err := config.DefaultAndValidate(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func setup(opts options, logOut io.Writer) (config.Config, zerolog.Logger, backend.Backend, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, err
	}
	log, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, err
	}
	b, err := backend.New(cfg.Backend, log)
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, err
	}
	return cfg, log, b, nil
}

func run(ctx context.Context, opts options, logOut io.Writer) error {
	cfg, log, b, err := setup(opts, logOut)
	if err != nil {
		return err
	}
	defer b.Close()

	log.Info().Str("backend", cfg.Backend.Kind).Msg("pwm led controller starting")
	log.Info().Msg("press Ctrl+C to exit")

	if err := backend.Probe(b); err != nil {
		return err
	}

	loop := controlloop.New(b, controlloop.Config{
		Thresholds: cfg.Mapping.Thresholds(),
		Interval:   cfg.Loop.Interval,
	}, log)

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		log.Info().Uint64("iterations", loop.Snapshot().Iterations).Msg("pwm led controller stopping")
		return nil
	}
	return err
}

func probe(opts options, logOut io.Writer) error {
	cfg, log, b, err := setup(opts, logOut)
	if err != nil {
		return err
	}
	defer b.Close()
	if err := backend.Probe(b); err != nil {
		return err
	}
	log.Info().Str("backend", cfg.Backend.Kind).Msg("backend accessible")
	return nil
}

func printMapping(w io.Writer, th mapping.Thresholds, args []string) error {
	for _, a := range args {
		speed, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid speed %q: %w", a, err)
		}
		d := mapping.Compute(th, speed)
		if _, err := fmt.Fprintf(w, "%d\t%d %d %d\n", speed, d.LED1, d.LED2, d.LED3); err != nil {
			return err
		}
	}
	return nil
}
