package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/segalloc/internal/logger"
)

const (
	envPrefix = "SEGALLOC"

	keyConfig   = "config"
	keyLogLevel = "log-level"
	keyLogDir   = "log-dir"
)

// app holds the global flags shared by every command.
type app struct {
	verbose  bool
	quiet    bool
	logLevel string
	logDir   string
	cfgFile  string

	out     io.Writer
	printer *message.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{printer: message.NewPrinter(language.English)}

	rootCmd := &cobra.Command{
		Use:   "segalloc",
		Short: "Replay and stress a segregated free-list allocator",
		Long: `segalloc drives a segregated free-list and slab allocator over a growable
arena. It replays allocation traces with payload and heap consistency checks,
reports space utilization and throughput, and synthesizes random traces.

Every flag can also be set from the environment (SEGALLOC_<FLAG>, dashes
become underscores) or from a config file passed with --config.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			if err := initializeConfig(cmd, a.cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return a.initLogger(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all output except errors")
	flags.StringVar(&a.logLevel, keyLogLevel, "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logDir, keyLogDir, "", "Write JSON logs to daily files in this directory instead of stderr")
	flags.StringVar(&a.cfgFile, keyConfig, "", "Config file (yaml, json or toml)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newGenCmd(a),
		newValidateCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

func (a *app) initLogger(cmd *cobra.Command) error {
	level, err := logger.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = min(level, slog.LevelDebug)
	}
	return logger.Init(logger.Options{
		Enabled: !a.quiet,
		LogDir:  a.logDir,
		Level:   level,
		Stderr:  cmd.ErrOrStderr(),
	})
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig(cmd *cobra.Command, cfgFile string) error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	// It's okay if there isn't a config file.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := bindFlags(cmd, v); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// bindFlags applies config file and environment values to every flag the
// user did not set explicitly.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == keyConfig {
			return
		}

		// Environment variables can't have dashes in them, so bind them to their equivalent
		// keys with underscores, e.g. --max-heap to SEGALLOC_MAX_HEAP
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("binding env to flag %q: %w", f.Name, err))
				return
			}
		}

		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("setting flag %q value: %w", f.Name, err))
				return
			}
		}
	})

	return errors.Join(bindFlagErr...)
}

// printInfo prints an info message if not in quiet mode
func (a *app) printInfo(format string, args ...any) {
	if !a.quiet {
		a.printer.Fprintf(a.out, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func (a *app) printVerbose(format string, args ...any) {
	if a.verbose && !a.quiet {
		a.printer.Fprintf(a.out, format, args...)
	}
}
