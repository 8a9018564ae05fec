package main

import (
	"fmt"
	"os"

	logpkg "healthindex/internal/common/logger"
	"healthindex/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel    string
	catalogPath string
)

var rootCmd = &cobra.Command{
	Use:   "healthindex",
	Short: "Biomarker taxonomy and health index service",
	Long: `healthindex seeds the biomarker taxonomy (categories, biomarkers, score weights,
data sources), serves it over HTTP and keeps a daily health data snapshot.

Running without a subcommand is the same as "healthindex serve".`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Override TAXONOMY_CATALOG_PATH")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup 加载配置并初始化日志（命令行参数优先于环境变量）
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if catalogPath != "" {
		cfg.Taxonomy.CatalogPath = catalogPath
	}

	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "healthindex")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}
