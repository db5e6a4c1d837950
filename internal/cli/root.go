package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"essaysim/config"
	"essaysim/internal/logger"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	log      *zap.Logger
	logLevel string

	langFlag    string
	upperFlag   float64
	lowerFlag   float64
	energyFlag  float64
	noTFIDFFlag bool
	noLSAFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "essaysim",
	Short: "Essay similarity scorer - grade free text answers against a reference",
	Long: `essaysim scores how close a response text is to a reference text using
language aware cleaning, TF-IDF weighting and latent semantic analysis, then
bands the score into correct, partial or incorrect.

Example usage:
  essaysim score ref.txt answer.txt            # Score one answer
  essaysim score --text "ref" "answer" --json  # Score literal texts
  essaysim batch ref.txt answers/              # Grade a directory
  essaysim serve                               # Start the HTTP API`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlagOverrides(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err = logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./essaysim.yaml)")
	pf.StringVarP(&rootDir, "dir", "d", "", "project directory holding config and history (default is current directory)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&langFlag, "lang", "l", "", "language code (default from config)")
	pf.Float64Var(&upperFlag, "upper", 0, "upper correctness threshold (default from config)")
	pf.Float64Var(&lowerFlag, "lower", 0, "lower correctness threshold (default from config)")
	pf.Float64Var(&energyFlag, "energy", 0, "LSA energy threshold in (0, 1] (default from config)")
	pf.BoolVar(&noTFIDFFlag, "no-tfidf", false, "disable TF-IDF weighting")
	pf.BoolVar(&noLSAFlag, "no-lsa", false, "disable the LSA reduction")
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Grading.Language = langFlag
	}
	if flags.Changed("upper") {
		cfg.Grading.UpperCorrectness = upperFlag
	}
	if flags.Changed("lower") {
		cfg.Grading.LowerCorrectness = lowerFlag
	}
	if flags.Changed("energy") {
		cfg.Pipeline.Energy = energyFlag
	}
	if noTFIDFFlag {
		cfg.Pipeline.TFIDF = false
	}
	if noLSAFlag {
		cfg.Pipeline.LSA = false
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
