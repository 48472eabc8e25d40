package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/searchstims/internal/config"
	"github.com/ironsheep/searchstims/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	envFile    string
	logLevel   string
	logFile    string
	devLog     bool
)

var rootCmd = &cobra.Command{
	Use:   "searchstims",
	Short: "Generate visual search stimuli",
	Long: `searchstims generates synthetic visual search displays (a target among
distractors) together with per-image metadata and a CSV ledger.

Examples:
  searchstims plan -c config.yaml
  searchstims make -c config.yaml
  searchstims audit -c config.yaml --dump ./mismatches
  searchstims serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			return config.LoadDotEnv(envFile)
		}
		return config.LoadDotEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotated file")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "Human-readable colored console logs")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("searchstims %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
		},
	})
}

// addConfigFlag registers the -c flag shared by the commands that read a config file.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the YAML config")
	_ = cmd.MarkFlagRequired("config")
}

// newLogger builds the process logger. Flags win over the environment, which
// wins over the config file's log section.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := logging.Config{Level: config.DefaultLogLevel}
	if cfg != nil {
		lc.Level = cfg.Log.Level
		lc.File = cfg.Log.File
		lc.Development = cfg.Log.Development
	} else {
		if v := os.Getenv(config.EnvLogLevel); v != "" {
			lc.Level = v
		}
		lc.File = os.Getenv(config.EnvLogFile)
	}
	if logLevel != "" {
		lc.Level = logLevel
	}
	if logFile != "" {
		lc.File = logFile
	}
	if devLog {
		lc.Development = true
	}
	return logging.New(lc)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "Error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
