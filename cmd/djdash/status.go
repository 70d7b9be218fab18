package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"djdash/pkg/djdash"
)

func newStatusCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running djdash-server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := djdash.NewClient(v.GetString("server"))
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status: %s\nconstituents: %d\nseries: %d\n", h.Status, h.Constituents, h.Series)
			for _, s := range h.Skipped {
				fmt.Fprintf(out, "skipped %s\n", s)
			}
			return nil
		},
	}
	cmd.Flags().String("server", "http://127.0.0.1:8050", "dashboard base URL (env DJDASH_SERVER)")
	_ = v.BindPFlag("server", cmd.Flags().Lookup("server"))
	return cmd
}
