package main

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wdm0006/catfill/pkg/logging"
)

// settings are the process-wide knobs. Precedence: flags > CATFILL_* env >
// defaults.
type settings struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Workers   int    `mapstructure:"workers"`
	ChunkSize int    `mapstructure:"chunk_size"`
}

type app struct {
	v   *viper.Viper
	log *slog.Logger
	cfg settings
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:           "catfill",
		Short:         "Fill missing categorical values from their most associated column",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.Int("workers", 1, "concurrent chi-square tests during fit")
	pf.Int("chunk-size", 0, "stream the apply phase in chunks of this many rows (0 = whole file)")

	a.v.SetEnvPrefix("CATFILL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	for _, name := range []string{"log-level", "log-format", "workers", "chunk-size"} {
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), pf.Lookup(name))
	}

	root.AddCommand(newImputeCmd(a), newAssociationsCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return err
	}
	l, err := logging.New(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
	if err != nil {
		return err
	}
	a.log = logging.WithRun(l, uuid.NewString()).With("command", cmd.Name())
	return nil
}
