package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/searchstims/internal/batch"
	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/placement"
)

var (
	makeOutputDir string
	makeSeed      int64
)

func init() {
	makeCmd := &cobra.Command{
		Use:   "make",
		Short: "Generate a dataset from a config file",
		Long: `Generate every stimulus, set size and target condition named in the config.

Images go to <output_dir>/<stimulus>/<set_size>/<present|absent>/, each with a
.meta.json file, and every image is listed in <output_dir>/<csv_filename>.

Examples:
  searchstims make -c config.yaml
  searchstims make -c config.yaml -o ./run2 --seed 42`,
		RunE: runMake,
	}

	addConfigFlag(makeCmd)
	makeCmd.Flags().StringVarP(&makeOutputDir, "output", "o", "", "Override the config's output_dir")
	makeCmd.Flags().Int64Var(&makeSeed, "seed", 0, "Override the config's seed")

	rootCmd.AddCommand(makeCmd)
}

func runMake(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if makeOutputDir != "" {
		cfg.General.OutputDir = makeOutputDir
	}
	if cmd.Flags().Changed("seed") {
		cfg.General.Seed = makeSeed
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	o, err := batch.New(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("loaded config",
		zap.String("run_id", o.RunID()),
		zap.Int64("seed", o.Seed()),
		zap.String("config", configPath))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := o.Run(ctx)
	if err != nil {
		var inf *placement.InfeasibleError
		if errors.As(err, &inf) {
			color.New(color.FgYellow).Fprintf(os.Stderr,
				"Lower the image count, enlarge the grid or raise jitter (capacity %d, requested %d).\n",
				inf.Capacity(), inf.Requested)
		}
		return err
	}

	color.New(color.FgGreen, color.Bold).Printf("Generated %d images", sum.Images)
	fmt.Printf(" in %d groups (%v)\n", sum.Groups, sum.Duration.Round(time.Millisecond))
	color.New(color.FgHiBlack).Printf("  run %s, seed %d\n", sum.RunID, o.Seed())
	fmt.Printf("  ledger: %s\n", sum.CSVPath)
	return nil
}
