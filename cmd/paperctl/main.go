// Package main is the entry point for the paperctl CLI. It runs the same
// extraction and analysis as the server against local files and keeps a
// local SQLite history.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paper-analyzer/internal/config"
	"paper-analyzer/internal/domain"
	"paper-analyzer/pkg/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultLogLevel keeps the CLI quiet unless a level is configured.
const defaultLogLevel = "warn"

var rootCmd = &cobra.Command{
	Use:     "paperctl",
	Short:   "Analyze research papers from the command line",
	Version: version,
	Long: `paperctl extracts text from PDF, DOCX and text files and scores the paper's
structure (IMRAD), readability, citations and methodology. Bibliographic
metadata can be resolved from the DOI or PMID found in the text, and
analyses can be saved to a local history.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperctl.yaml or ~/.config/paperctl/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path of the local history database")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (default: LOG_LEVEL, else warn)")

	_ = viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperctl"))
		}
	}

	viper.SetEnvPrefix("PAPERCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig starts from the server's environment configuration and applies
// paperctl settings from flags, PAPERCTL_* variables and the config file.
// The log level is the first of --log-level, PAPERCTL_LOG_LEVEL, log_level in
// the config file, LOG_LEVEL and "warn".
func loadConfig(v *viper.Viper) (*config.AppConfig, error) {
	cfg := config.NewConfig().(*config.AppConfig)
	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		cfg.LogLevel = defaultLogLevel
	}

	overrideString(v, "database_path", &cfg.DatabasePath)
	overrideString(v, "log_level", &cfg.LogLevel)
	overrideString(v, "contact_email", &cfg.ContactEmail)
	overrideString(v, "pubmed_api_key", &cfg.PubMedAPIKey)
	overrideString(v, "semantic_scholar_api_key", &cfg.SemanticScholarAPIKey)
	if v.IsSet("metadata_timeout_seconds") {
		cfg.MetadataTimeoutSeconds = v.GetInt("metadata_timeout_seconds")
	}
	if v.IsSet("max_file_size") {
		cfg.MaxFileSize = v.GetInt64("max_file_size")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

func newLogger(cfg *config.AppConfig) domain.Logger {
	return logger.NewLoggerWithWriter(cfg.GetLogLevel(), os.Stderr)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
