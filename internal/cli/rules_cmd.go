package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/muse/internal/cli/formatter"
	"github.com/alexanderramin/muse/internal/rules"
)

func newRulesCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the active trigger rule catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := rules.Load(a.RulesDir)
			out := cmd.OutOrStdout()
			if err != nil {
				fmt.Fprintln(out, formatter.StyleYellow.Render(
					fmt.Sprintf("catalog in %s is invalid, showing defaults: %v", a.RulesDir, err)))
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, formatter.FormatCatalog(catalog))
			return nil
		},
	}
}
