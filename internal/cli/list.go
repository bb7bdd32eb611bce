package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed components",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			installed, err := app.mgr.ListInstalled()
			if err != nil {
				return err
			}

			if len(installed) == 0 {
				fmt.Printf("\n%s No components installed\n", dim("○"))
				return nil
			}

			fmt.Printf("Installed components:\n\n")
			for _, ic := range installed {
				line := fmt.Sprintf(" %s", bold(fmt.Sprintf("%s-%s", ic.Name, ic.Version)))
				if ic.Category != "" {
					line += fmt.Sprintf("  %s", dim(ic.Category))
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
