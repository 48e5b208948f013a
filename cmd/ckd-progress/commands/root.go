package commands

import (
	"fmt"
	"os"

	"ckd-progress/internal/config"
	"ckd-progress/internal/logging"
	"ckd-progress/internal/progress"
	"ckd-progress/internal/report"
	"ckd-progress/internal/source"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose    bool
	configPath string
	inputDir   string
	workers    int
	sample     int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ckd-progress",
	Short: "ckd-progress computes CKD stage progression statistics from Synthea archives",
	Long: `Reads partitioned Synthea exports (*.tar.gz, one archive per partition),
merges each patient's earliest date per CKD stage across all partitions and
reports stage-to-stage transition durations with mean, median and mode.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flags beat config file and environment.
		if cmd.Flags().Changed("input") {
			cfg.InputDir = inputDir
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = workers
		}
		if cmd.Flags().Changed("sample") {
			cfg.Sample = sample
		}
		if cfg.InputDir == "" {
			return fmt.Errorf("no input directory: pass --input or set input_dir / CKD_INPUT_DIR")
		}
		if cfg.Workers < 1 {
			return fmt.Errorf("workers must be >= 1, got %d", cfg.Workers)
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("input", cfg.InputDir).
			Int("workers", cfg.Workers).
			Msg("ckd-progress starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		src := source.NewArchiveSource(cfg.InputDir)
		res, err := progress.Run(cmd.Context(), src, progress.Options{
			Window:     cfg.Window,
			Classifier: cfg.Classifier,
			Specs:      cfg.Specs,
			Workers:    cfg.Workers,
		})
		if err != nil {
			return err
		}
		return report.Render(os.Stdout, res, cfg.Sample)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory of Synthea *.tar.gz archives")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 1, "concurrent partition workers")
	rootCmd.Flags().IntVar(&sample, "sample", 10, "per-patient timelines to print (0 disables)")
}
