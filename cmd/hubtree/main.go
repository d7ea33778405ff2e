// Command hubtree explores a hub/sub graph kept in a drive of JSON
// documents. With no subcommand it runs the terminal explorer.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	drivePath  string
	backend    string
	hubs       string
	cpuProfile string
	noMouse    bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	var stopProfile func()

	root := &cobra.Command{
		Use:   "hubtree",
		Short: "Explore a hub/sub graph as a lazily expanded tree",
		Long: "hubtree shows the entries of a drive as a tree: subs expand below an entry,\n" +
			"hubs above it. Expansion, selection and scroll live in the drive, so other\n" +
			"processes can watch or drive the explorer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.cpuProfile == "" {
				return nil
			}
			f, err := os.Create(flags.cpuProfile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			stopProfile = func() {
				pprof.StopCPUProfile()
				f.Close()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if stopProfile != nil {
				stopProfile()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/hubtree/config.yaml)")
	pf.StringVar(&flags.drivePath, "drive", "", "drive directory or database file")
	pf.StringVar(&flags.backend, "backend", "", "drive backend: dir, sqlite or mem")
	pf.StringVar(&flags.hubs, "hubs", "", "duplicate hubs: default, true or false")
	pf.StringVar(&flags.cpuProfile, "cpu-profile", "", "write CPU profile to file")
	root.Flags().BoolVar(&flags.noMouse, "no-mouse", false, "disable mouse support")

	root.AddCommand(
		newDumpCmd(&flags),
		newExportCmd(&flags),
		newCheckCmd(&flags),
		newQueryCmd(&flags),
		newServeCmd(&flags),
		newResetCmd(&flags),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hubtree: %v\n", err)
		os.Exit(1)
	}
}
