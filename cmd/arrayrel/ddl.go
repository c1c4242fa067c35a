package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/arrayrel/dialect/sql/schema"
	"github.com/syssam/arrayrel/internal/cli"
)

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Print the CREATE statements of the models",
	Long: `Print the statements creating the tables of the models file.

Array relations become NOT NULL array columns defaulting to the empty
array, with a GIN index. Parent tables are created before the tables of
the models inheriting from them.`,
	Example: `  # Print the DDL of models.yaml
  arrayrel ddl --models models.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		tables := schema.Tables(g)
		if r := schema.ValidateSchema(tables); r.HasErrors() {
			return cli.ModelsError("invalid tables", fmt.Errorf("%s", r))
		}
		stmts, err := schema.DDL(cmd.Context(), tables)
		if err != nil {
			return cli.GeneralError("planning DDL", err)
		}
		out := cmd.OutOrStdout()
		for _, s := range stmts {
			fmt.Fprintf(out, "%s;\n", s)
		}
		return nil
	},
}
