package cli

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cellar/internal/state"
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <name>...",
		Short: "Install components",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.close()

			ctx := cmd.Context()

			stop := withSpinner(ctx, "Fetching catalogs...")
			app.repos.WaitReady()
			stop()

			// Download progress reaches us the same way it reaches the
			// desktop shell: task updates on the bus.
			bar := downloadBar("Installing...")
			app.st.Signals.Subscribe(state.TaskUpdated, func(res state.Result) {
				id, ok := res.Data.(uuid.UUID)
				if !ok {
					return
				}
				if task, ok := app.st.Tasks.Get(id); ok {
					bar.Describe(fmt.Sprintf("%s %s", task.Title, task.Subtitle()))
				}
			})

			// Install serializes on the components lock, so the limit
			// only bounds goroutines queued on it.
			mu := &sync.Mutex{}
			var errs []error
			output := make(map[string]string)

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(min(len(args), app.cfg.MaxParallel))

			for _, name := range args {
				name := name
				g.Go(func() error {
					ic, err := app.mgr.Install(gctx, name)

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						output[name] = fmt.Sprintf("%s %s%s%s\n  %s %s",
							green("✓"), bold(ic.Name), bold("-"), bold(ic.Version),
							cyan("path:"), ic.Path)
					case strings.Contains(err.Error(), "already installed"):
						output[name] = fmt.Sprintf("%s %s already installed", yellow("!"), bold(name))
					default:
						errs = append(errs, fmt.Errorf("%s: %v", name, err))
					}
					return nil
				})
			}

			_ = g.Wait()
			_ = bar.Finish()

			fmt.Println()
			for _, name := range args {
				if msg, ok := output[name]; ok {
					fmt.Println(msg)
				}
			}

			if len(errs) > 0 {
				for _, e := range errs {
					fmt.Printf("%s %s\n", red("✗"), e)
				}
				return fmt.Errorf("failed to install %d component(s)", len(errs))
			}
			return nil
		},
	}
	return cmd
}
