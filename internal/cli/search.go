package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cellar/internal/repo"
)

func newSearchCmd() *cobra.Command {
	var repoName string
	var show int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the component catalogs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			stop := withSpinner(cmd.Context(), fmt.Sprintf("Searching %s...", args[0]))
			app.repos.WaitReady()
			results, err := app.mgr.Search(repoName, args[0])
			stop()
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Printf("%s No results found for %q\n", dim("○"), args[0])
				return nil
			}

			size := min(len(results), show)
			fmt.Printf("\nShowing %s of %s results for %q\n\n", green(size), green(len(results)), args[0])

			for i := 0; i < size; i++ {
				fmt.Printf("%s %s\n", green("●"), bold(results[i]))
			}

			if len(results) > size {
				fmt.Printf("\n%s %d more available, use %s to see all\n",
					dim("..."), len(results)-size, cyan(fmt.Sprintf("--show %d", len(results))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&repoName, "repo", "r", repo.ComponentsRepo, "Catalog to search (components, dependencies, installers)")
	cmd.Flags().IntVarP(&show, "show", "s", 50, "Shows first n results")
	return cmd
}
