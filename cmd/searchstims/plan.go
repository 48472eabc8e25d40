package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/placement"
)

func init() {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Check a config without generating images",
		Long: `Resolve every stimulus in the config and report, per set size, how many
images each condition asks for and how many unique displays the grid can hold.

Groups that would fail with enforce_unique are marked INFEASIBLE.

Example:
  searchstims plan -c config.yaml`,
		RunE: runPlan,
	}

	addConfigFlag(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	specs, err := cfg.ResolveAll()
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	bad := color.New(color.FgRed, color.Bold)
	dim := color.New(color.FgHiBlack)
	unique := cfg.General.Unique()

	infeasible := 0
	for _, spec := range specs {
		header.Printf("%s", spec.Name)
		dim.Printf(" (%s)\n", describeLayout(spec.Placement))

		for i, n := range spec.SetSizes {
			fmt.Printf("  set size %-3d present %-5d absent %-5d", n, spec.Present[i], spec.Absent[i])
			if spec.Placement.Grid == nil || !unique {
				fmt.Println()
				continue
			}

			capacity := placement.Capacity(spec.Placement.Grid.NumCells(), n, spec.Placement.Jitter)
			fmt.Printf(" capacity %s", formatCapacity(capacity))
			if most := max(spec.Present[i], spec.Absent[i]); most > capacity {
				infeasible++
				bad.Print("  INFEASIBLE")
			}
			fmt.Println()
		}
	}

	if infeasible > 0 {
		return fmt.Errorf("%d group(s) ask for more unique images than the grid can hold", infeasible)
	}
	return nil
}

func describeLayout(c placement.Config) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("window %s", c.Window))
	if c.Grid != nil {
		parts = append(parts, fmt.Sprintf("grid %dx%d", c.Grid.Rows, c.Grid.Cols), fmt.Sprintf("jitter %d", c.Jitter))
	} else {
		parts = append(parts, "free field")
		if c.MinCenterDist != nil {
			parts = append(parts, fmt.Sprintf("min center dist %d", *c.MinCenterDist))
		}
	}
	return strings.Join(parts, ", ")
}

func formatCapacity(n int) string {
	if n == math.MaxInt {
		return "unbounded"
	}
	return fmt.Sprintf("%d", n)
}
