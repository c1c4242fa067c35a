package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/arrayrel/internal/cli"
)

var pruneConcurrency int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove identifiers of deleted rows from array columns",
	Long: `Remove identifiers that point at rows that no longer exist from every
array column of the models. The order of the remaining identifiers is kept.

Deletes made without the cascade listener, or by other applications,
leave such identifiers behind.`,
	Example: `  arrayrel prune --db postgres://localhost/shop --concurrency 8`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		drv, err := openDriver(ctx)
		if err != nil {
			return err
		}
		if pruneConcurrency > 0 {
			cfg.Prune.Concurrency = pruneConcurrency
		}
		d, done, err := instrument(ctx, drv)
		if err != nil {
			drv.Close()
			return err
		}
		defer done()
		client := newClient(d, g)
		defer client.Close()
		n, err := client.Prune(ctx)
		if err != nil {
			return cli.GeneralError("pruning", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d rows.\n", n)
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneConcurrency, "concurrency", 0, "relations pruned at the same time (overrides prune.concurrency)")
}
