package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"djdash/internal/domain"
	"djdash/internal/report"
)

func newReportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print dashboard views as terminal tables",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "overview",
			Short: "Constituents per market with latest prices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dash, opts, err := openDashboard(cmd, v)
				if err != nil {
					return err
				}
				return report.WriteOverview(cmd.OutOrStdout(), dash.Dataset(), opts)
			},
		},
		newStockCmd(v),
		newCorrelationsCmd(v),
	)
	return cmd
}

func newStockCmd(v *viper.Viper) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "stock <TICKER>",
		Short: "Recent closes with moving averages for one stock",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires exactly 1 ticker argument")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, opts, err := openDashboard(cmd, v)
			if err != nil {
				return err
			}
			ticker := strings.ToUpper(args[0])
			c, err := dash.Dataset().Constituents.Get(ticker)
			if err != nil {
				return err
			}
			s, err := dash.Prices().LoadSeries(cmd.Context(), ticker)
			if err != nil {
				return err
			}
			opts.Rows = rows
			return report.WriteStock(cmd.OutOrStdout(), c, s, opts)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 20, "trailing observations to show")
	return cmd
}

func newCorrelationsCmd(v *viper.Viper) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "correlations",
		Short: "Most and least correlated pairs of daily changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, opts, err := openDashboard(cmd, v)
			if err != nil {
				return err
			}
			m, err := dash.Correlation()
			if err != nil {
				return err
			}
			opts.Top = top
			return report.WriteCorrelations(cmd.OutOrStdout(), m, opts)
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "pairs to show at each end")
	return cmd
}

func newPDFCmd(v *viper.Viper) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "pdf <out.pdf>",
		Short: "Write a PDF summary of the dashboard data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, opts, err := openDashboard(cmd, v)
			if err != nil {
				return err
			}
			opts.Top = top

			var corr *domain.CorrelationMatrix
			if m, err := dash.Correlation(); err == nil {
				corr = &m
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := report.WritePDF(f, dash.Dataset(), corr, opts, time.Now()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "correlation pairs to list at each end")
	return cmd
}
