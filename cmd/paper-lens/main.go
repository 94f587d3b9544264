// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-lens CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-lens/internal/llm"
	"github.com/pdiddy/paper-lens/internal/secrets"
	"github.com/pdiddy/paper-lens/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paper-lens CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-lens",
	Short: "Model-assisted reading and comparison of research papers",
	Long: `paper-lens reads research papers, extracts a structured analysis per
document, aggregates knowledge across a batch, and writes Markdown reports.

Each stage is a subcommand: analyze produces per-document analysis records,
aggregate compares a batch and generates a report, compare runs a head-to-head
of two papers, and store indexes saved analyses for search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-lens.yaml or ~/.config/paper-lens/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "inference provider: openai, anthropic, deepseek, zhipu, or ollama")
	rootCmd.PersistentFlags().String("model", "", "model identifier (e.g. gpt-4o)")
	rootCmd.PersistentFlags().String("language", "", "output language: english or chinese")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-lens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-lens"))
		}
	}

	viper.SetEnvPrefix("PAPER_LENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds the pipeline configuration: built-in defaults, overlaid
// with the discovered config file, overlaid with root flags and secrets.
func loadConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.LLM.Model = model
	}
	if language, _ := cmd.Flags().GetString("language"); language != "" {
		cfg.Report.Language = language
	}

	if cfg.LLM.APIKey == "" {
		if key := secrets.KeyFor(cfg.LLM.Provider); key != "" {
			cfg.LLM.APIKey = loadedSecrets[key]
		}
	}

	return cfg, nil
}

// newHelper builds the inference helper from the pipeline configuration.
func newHelper(cfg types.PipelineConfig) *llm.Helper {
	return llm.NewHelper(llm.New(cfg.LLM))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
