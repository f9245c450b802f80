package cli

import (
	"fmt"
	"sort"
	"strings"

	"recon-engine/internal/app"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [name]",
		Short: "Print JSON Schemas of the emitted records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas := app.OutputSchemas()
			if len(args) == 0 {
				return writeJSON(cmd.OutOrStdout(), schemas)
			}
			s, ok := schemas[args[0]]
			if !ok {
				names := make([]string, 0, len(schemas))
				for n := range schemas {
					names = append(names, n)
				}
				sort.Strings(names)
				return fmt.Errorf("unknown schema %q, available: %s", args[0], strings.Join(names, ", "))
			}
			return writeJSON(cmd.OutOrStdout(), s)
		},
	}
}
