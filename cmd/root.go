// cmd/root.go

// Package cmd implements the quill command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
	"github.com/xkilldash9x/quill-cli/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	cfgFile  string
	logLevel string
	format   string
	trace    bool
}

var outputFormats = map[string]bool{"text": true, "json": true, "yaml": true, "html": true}

// NewRootCommand builds a fresh command tree. Each call returns independent
// flag state.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}
	var stopTracing func(context.Context) error

	rootCmd := &cobra.Command{
		Use:           "quill",
		Short:         "Quill composes, judges, and assembles social posts with LLMs.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !outputFormats[flags.format] {
				return fmt.Errorf("unsupported output format %q (want text, json, yaml or html)", flags.format)
			}

			v := viper.New()
			config.SetDefaults(v)
			config.BindEnv(v)
			if err := initializeConfig(v, flags.cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			if flags.trace {
				v.Set("llm.tracing", true)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				_ = observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "quill"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}
			if flags.logLevel != "" {
				cfg.SetLoggerLevel(flags.logLevel)
			}
			if err := observability.InitializeLogger(cfg.Logger()); err != nil {
				return err
			}

			if flags.trace {
				stop, err := observability.InitTracing(cfg.Logger().ServiceName, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				stopTracing = stop
			}

			observability.GetLogger().Debug("Starting quill", zap.String("version", Version), zap.String("command", cmd.CommandPath()))
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, config.Interface(cfg)))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer observability.Sync()
			if stopTracing != nil {
				return stopTracing(context.Background())
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.cfgFile, "config", "c", "", "config file (default ./quill.yaml, then ~/.config/quill/quill.yaml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "override logger.level (debug, info, warn, error)")
	pf.StringVarP(&flags.format, "format", "o", "text", "output format: text, json, yaml or html")
	pf.BoolVar(&flags.trace, "trace", false, "write OpenTelemetry spans to stderr")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newPostCmd(flags),
		newSimulateCmd(flags),
		newTweetCmd(flags),
		newResearchCmd(flags),
		newMarketCmd(flags),
		newBatchCmd(flags),
		newServeCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args with a signal aware context.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var failed *TaskFailedError
	switch {
	case errors.As(err, &failed):
		// The error payload was already written to stderr.
	case errors.Is(err, context.Canceled):
		observability.GetLogger().Warn("Command aborted")
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	observability.Sync()
	return err
}

// ExitCode maps a command error onto a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var failed *TaskFailedError
	if errors.As(err, &failed) && failed.Payload.Kind == schemas.KindValidation {
		return 2
	}
	if errors.Is(err, context.Canceled) || schemas.KindOf(err) == schemas.KindCanceled {
		return 130
	}
	return 1
}

// initializeConfig reads the config file if one exists. A missing default file
// is not an error; a missing explicit file is.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return err
		}
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.SetConfigName("quill")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "quill"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func configFrom(cmd *cobra.Command) (config.Interface, error) {
	cfg, ok := cmd.Context().Value(configKey).(config.Interface)
	if !ok {
		return nil, errors.New("configuration was not loaded")
	}
	return cfg, nil
}
