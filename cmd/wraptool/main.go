// wraptool is a CLI utility for checking product meshes and producing
// texture assets offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/wrapview/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:   "wraptool",
		Short: "Mesh and texture utility for wrapview",
		Long: `wraptool inspects product meshes, previews UV projection, and renders
pattern and alignment grid textures.

Examples:
  wraptool inspect models/cup.glb
  wraptool project models/cup.glb --mode cylindrical --pad-top 0.12 --pad-bottom 0.08
  wraptool pattern dots --size 1024 -o dots.png
  wraptool grid --cells 10 -o grid.png
  wraptool catalog ./textures`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if debug {
				level = "debug"
			}
			return logger.Init(level, "")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newInspectCmd(),
		newProjectCmd(),
		newPatternCmd(),
		newGridCmd(),
		newCatalogCmd(),
	)
	return root
}
