package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"djdash/internal/store"
)

func newConvertCmd(v *viper.Viper) *cobra.Command {
	var pricesOut, metadataOut string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert CSV price files to parquet and/or the metadata table to SQLite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pricesOut == "" && metadataOut == "" {
				return errors.New("nothing to do: set --prices-out and/or --metadata-out")
			}
			cfg, logger, err := setup(v)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if pricesOut != "" {
				src, err := store.NewPriceStore(cfg.Data.PriceFormat, cfg.Data.PricesDir)
				if err != nil {
					return err
				}
				copied, failed, err := store.CopySeries(ctx, src, store.NewParquetStore(pricesOut), logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "prices: %d series written to %s, %d skipped\n", copied, pricesOut, len(failed))
			}

			if metadataOut != "" {
				n, err := store.ConvertConstituents(ctx, cfg.Data.MetadataPath, metadataOut)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "metadata: %d constituents written to %s\n", n, metadataOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pricesOut, "prices-out", "", "directory for <TICKER>.parquet files")
	cmd.Flags().StringVar(&metadataOut, "metadata-out", "", "SQLite database for the constituents table")
	return cmd
}
