package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/renderinc/catalog-search/internal/config"
	"github.com/renderinc/catalog-search/internal/logging"
)

var (
	// Global flags
	cfgFile string
	dataDir string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "catalog-search",
	Short: "Search, filter and paginate course and blog catalogs",
	Long: `catalog-search serves the storefront's course and blog catalogs.

Catalogs come from the built-in seed, a seed file, or a SQLite or Redis
store filled by "catalog-search import". Queries combine a search term,
a category, facet selections and a page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.Storage.DataDir = dataDir
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "catalog-search.yaml", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for the database and suggestion index")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(facetsCmd)
	rootCmd.AddCommand(getItemCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
