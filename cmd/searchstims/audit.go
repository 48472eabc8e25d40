package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ironsheep/searchstims/internal/audit"
	"github.com/ironsheep/searchstims/internal/config"
)

var (
	auditCSV  string
	auditDump string
)

func init() {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Check generated images against their metadata",
		Long: `Re-read every image in the ledger and compare what is drawn with its
.meta.json: item count, item colors, bar orientation and, when tesseract is
available, the digits of the number flavor.

Examples:
  searchstims audit -c config.yaml
  searchstims audit -c config.yaml --csv ./output/stimuli.csv --dump ./mismatches`,
		RunE: runAudit,
	}

	addConfigFlag(auditCmd)
	auditCmd.Flags().StringVar(&auditCSV, "csv", "", "Ledger to audit (default <output_dir>/<csv_filename>)")
	auditCmd.Flags().StringVar(&auditDump, "dump", "", "Write enlarged crops of mismatched items to this directory")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if auditCSV == "" {
		auditCSV = filepath.Join(cfg.General.OutputDir, cfg.General.CSVFilename)
	}
	opts := audit.DefaultOptions()
	opts.DumpDir = auditDump

	a, err := audit.New(cfg, opts, logger)
	if err != nil {
		return err
	}
	rep, err := a.Run(cmd.Context(), auditCSV)
	if err != nil {
		return err
	}

	for _, m := range rep.Mismatches {
		color.New(color.FgRed).Println(m.String())
	}
	dim := color.New(color.FgHiBlack)
	if rep.OK() {
		color.New(color.FgGreen, color.Bold).Print("✓ All items match")
		dim.Printf(" (%d images, %d items, %d checks skipped)\n", rep.Images, rep.Items, rep.Skipped)
		return nil
	}
	color.New(color.FgRed, color.Bold).Printf("✗ %d mismatches", len(rep.Mismatches))
	dim.Printf(" (%d images, %d items, %d checks skipped)\n", rep.Images, rep.Items, rep.Skipped)
	return fmt.Errorf("audit found %d mismatches", len(rep.Mismatches))
}
