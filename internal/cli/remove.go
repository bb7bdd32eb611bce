package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>...",
		Short: "Remove installed components",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			var failed int
			for _, name := range args {
				if err := app.mgr.Uninstall(name); err != nil {
					fmt.Printf("%s %s: %v\n", red("✗"), name, err)
					failed++
					continue
				}
				fmt.Printf("%s %s removed\n", green("✓"), bold(name))
			}

			if failed > 0 {
				return fmt.Errorf("failed to remove %d component(s)", failed)
			}
			return nil
		},
	}
}
