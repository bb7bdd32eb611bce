package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cellar/internal/repo"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the component catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			if !app.net.Check(cmd.Context()) && !app.cfg.Offline {
				fmt.Printf("%s Repository endpoint unreachable, catalogs may be empty\n", yellow("!"))
			}

			stop := withSpinner(cmd.Context(), "Fetching catalogs...")
			app.repos.WaitReady()
			stop()

			for _, name := range []string{repo.ComponentsRepo, repo.DependenciesRepo, repo.InstallersRepo} {
				r, ok := app.repos.Get(name)
				if !ok {
					continue
				}
				count := len(r.Catalog())
				if count == 0 {
					fmt.Printf("%s %s: no entries\n", yellow("!"), bold(name))
					continue
				}
				fmt.Printf("%s %s: %s entries\n", green("✓"), bold(name), green(count))
			}
			return nil
		},
	}
}
