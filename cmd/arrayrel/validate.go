package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/arrayrel/dialect/sql/schema"
	"github.com/syssam/arrayrel/internal/cli"
)

var allowDrop bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the models and the live tables",
	Long: `Validate the models file and the tables derived from it.

If a database is configured, the existing tables are inspected and
compared with the desired ones. Breaking differences, such as an array
column whose element type no longer matches the target key, fail the
command.`,
	Example: `  # Check the models file only
  arrayrel validate --models models.yaml

  # Compare with a live database
  arrayrel validate --db postgres://localhost/shop`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		desired := schema.Tables(g)
		if r := schema.ValidateSchema(desired); r.HasErrors() || r.HasWarnings() {
			fmt.Fprintln(out, r)
			if r.HasErrors() {
				return cli.ModelsError("invalid tables", nil)
			}
		}
		if !hasDatabase() {
			if !quiet {
				fmt.Fprintf(out, "Models are valid: %d models, %d tables.\n", len(g.Models), len(desired))
			}
			return nil
		}

		ctx := cmd.Context()
		drv, err := openDriver(ctx)
		if err != nil {
			return err
		}
		defer drv.Close()
		names := make([]string, len(desired))
		for i, t := range desired {
			names[i] = t.Name
		}
		current, err := schema.Inspect(ctx, drv.DB(), names...)
		if err != nil {
			return cli.GeneralError("inspecting tables", err)
		}
		var opts []schema.ValidateOption
		if allowDrop {
			opts = append(opts, schema.AllowDropColumn(), schema.AllowDropIndex())
		}
		r := schema.ValidateDiff(current, desired, opts...)
		found := make(map[string]bool, len(current))
		for _, t := range current {
			found[t.Name] = true
		}
		for _, n := range names {
			if !found[n] {
				logger.Warn("table does not exist", "table", n)
			}
		}
		if !quiet || r.HasErrors() {
			fmt.Fprintln(out, r)
		}
		if r.HasErrors() {
			return cli.SchemaDriftError("tables differ from the models")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&allowDrop, "allow-drop", false, "report dropped columns and indexes as warnings")
}
