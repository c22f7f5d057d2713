// Package cli is the desktop entry point: flags, config file and the choice
// between the window and the headless runner.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"touchdrive/app"
	"touchdrive/hal"
	"touchdrive/internal/buildinfo"
	"touchdrive/internal/logging"
	"touchdrive/internal/metrics"
)

type options struct {
	configFile string

	headless    bool
	cycles      uint64
	width       int
	height      int
	bufferLines int
	batchLines  int
	frameDelay  time.Duration
	diagEvery   int
	backlight   uint8

	touchScript string
	touchSerial string
	serialBaud  int

	metricsAddr string
	logLevel    string

	out io.Writer
	err io.Writer
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(runFirmware)
}

func newRootCommand(run func(context.Context, *options) error) *cobra.Command {
	opts := &options{}
	v := viper.New()
	def := app.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "touchdrive",
		Short:         "Run the touchscreen firmware on the desktop",
		Long:          "touchdrive runs the firmware render loop against a simulated panel, either in a window or headless.",
		Version:       buildinfo.Long(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(v, opts.configFile); err != nil {
				return err
			}
			return bindFlags(v, cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.out = cmd.OutOrStdout()
			opts.err = cmd.ErrOrStderr()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err := run(ctx, opts)
			if err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintln(opts.err, "touchdrive:", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is ./.touchdrive.yaml or $HOME/.touchdrive.yaml)")
	f.BoolVar(&opts.headless, "headless", false, "run without a window")
	f.Uint64Var(&opts.cycles, "cycles", 0, "stop after N cycles (0 = run until interrupted)")
	f.IntVar(&opts.width, "width", def.Width, "panel width in pixels")
	f.IntVar(&opts.height, "height", def.Height, "panel height in pixels")
	f.IntVar(&opts.bufferLines, "buffer-lines", def.BufferLines, "draw buffer height in lines")
	f.IntVar(&opts.batchLines, "batch-lines", def.BatchLines, "maximum lines per panel write")
	f.DurationVar(&opts.frameDelay, "frame-delay", def.FrameDelay, "pause at the end of every cycle")
	f.IntVar(&opts.diagEvery, "diag-every", def.DiagnosticsEvery, "cycles between memory snapshots")
	f.Uint8Var(&opts.backlight, "backlight", def.Backlight, "boot backlight brightness in percent")
	f.StringVar(&opts.touchScript, "touch-script", "", "replay touches from a YAML script")
	f.StringVar(&opts.touchSerial, "touch-serial", "", "read touches from a serial port")
	f.IntVar(&opts.serialBaud, "serial-baud", 115200, "serial touch baud rate")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	return cmd
}

func initConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".touchdrive")
	}
	v.SetEnvPrefix("touchdrive")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// bindFlags copies config and environment values onto flags the user did not
// set. Explicit flags win.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "config" {
			return
		}
		if !v.IsSet(f.Name) {
			return
		}
		if serr := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); serr != nil {
			err = fmt.Errorf("config %s: %w", f.Name, serr)
		}
	})
	return err
}

func (o *options) appConfig() (app.Config, error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return app.Config{}, err
	}
	cfg := app.DefaultConfig()
	cfg.Width, cfg.Height = o.width, o.height
	cfg.BufferLines = o.bufferLines
	cfg.BatchLines = o.batchLines
	cfg.FrameDelay = o.frameDelay
	cfg.DiagnosticsEvery = o.diagEvery
	cfg.Backlight = o.backlight
	cfg.MaxCycles = o.cycles
	cfg.LogLevel = level
	return cfg, nil
}

func (o *options) hostConfig() hal.HostConfig {
	return hal.HostConfig{
		Width:       o.width,
		Height:      o.height,
		TouchScript: o.touchScript,
		TouchSerial: o.touchSerial,
		SerialBaud:  o.serialBaud,
		Log:         o.out,
	}
}

func runFirmware(ctx context.Context, o *options) error {
	cfg, err := o.appConfig()
	if err != nil {
		return err
	}
	log := logging.New(o.err, cfg.LogLevel)
	cfg.Logger = log

	if o.metricsAddr != "" {
		c := metrics.New()
		cfg.Hooks = c.Hooks()
		cfg.BatchHook = c.ObserveBatch
		go func() {
			if err := c.Serve(ctx, o.metricsAddr, log); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	run := func(ctx context.Context, h hal.HAL) error {
		s, err := app.New(h, cfg)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	}

	if o.headless {
		log.Debug("running headless", "cycles", o.cycles)
		return hal.RunHeadless(ctx, o.hostConfig(), run)
	}
	return hal.RunWindow(ctx, o.hostConfig(), run)
}
