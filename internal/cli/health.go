package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"cellar/internal/config"
	"cellar/internal/health"
)

func newHealthCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the host system for required tools and report its state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			report := health.Check(cfg.CellarDir)

			if plain {
				out, err := report.Plain()
				if err != nil {
					return err
				}
				fmt.Print(out)
				return nil
			}

			fmt.Printf("%s %s %s\n", bold("cellar"), bold(report.Version), dim(report.Kernel+" "+report.KernelVersion))
			if report.Desktop != "" {
				fmt.Printf("  %s %s\n", cyan("desktop:"), report.Desktop)
			}
			switch {
			case report.Display.XWayland:
				fmt.Printf("  %s xwayland (%s)\n", cyan("display:"), report.Display.X11Port)
			case report.Display.Wayland:
				fmt.Printf("  %s wayland\n", cyan("display:"))
			case report.Display.X11:
				fmt.Printf("  %s x11 (%s)\n", cyan("display:"), report.Display.X11Port)
			default:
				fmt.Printf("  %s none\n", cyan("display:"))
			}
			fmt.Printf("  %s %s free of %s\n", cyan("disk:"),
				formatSize(report.Disk.FreeBytes), formatSize(report.Disk.TotalBytes))
			fmt.Printf("  %s %s available of %s\n", cyan("memory:"),
				formatSize(report.Memory.AvailableKB<<10), formatSize(report.Memory.TotalKB<<10))

			tools := make([]string, 0, len(report.Tools))
			for tool := range report.Tools {
				tools = append(tools, tool)
			}
			sort.Strings(tools)

			fmt.Println()
			for _, tool := range tools {
				mark := green("✓")
				if !report.Tools[tool] {
					mark = red("✗")
				}
				fmt.Printf("  %s %s\n", mark, tool)
			}

			if !report.HasCoreDeps() {
				return fmt.Errorf("missing core dependencies: %v", report.MissingCoreDeps())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Dump the full report as YAML")
	return cmd
}
