package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"djdash/internal/config"
	"djdash/internal/dashboard"
	"djdash/internal/report"
	"djdash/internal/util"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DJDASH")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:          "djdash",
		Short:        "Dow Jones constituents reports and data tools",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to YAML config (env DJDASH_CONFIG)")
	root.PersistentFlags().Bool("color", false, "colour terminal output")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("color", root.PersistentFlags().Lookup("color"))

	root.AddCommand(
		newReportCmd(v),
		newPDFCmd(v),
		newConvertCmd(v),
		newStatusCmd(v),
	)
	return root
}

// setup loads the config named by --config/DJDASH_CONFIG and builds a logger
// on stderr so command output on stdout stays clean.
func setup(v *viper.Viper) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDashboard(cmd *cobra.Command, v *viper.Viper) (*dashboard.Dashboard, report.Options, error) {
	cfg, logger, err := setup(v)
	if err != nil {
		return nil, report.Options{}, err
	}
	dash, err := dashboard.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, report.Options{}, err
	}
	short, long := dash.Windows()
	return dash, report.Options{
		ShortWindow: short,
		LongWindow:  long,
		Color:       v.GetBool("color"),
	}, nil
}
