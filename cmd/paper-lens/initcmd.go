package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// defaultConfigYAML is the starter config written by init. Values mirror the
// built-in defaults; durations and retry settings stay on their defaults
// unless added explicitly.
const defaultConfigYAML = `llm:
  provider: openai
  model: gpt-4o
  temperature: 0.3
  max_tokens: 4096

analyze:
  dimensions: [background, technology, experiment, result]
  max_window: 2000
  extract_keywords: true
  num_keywords: 10
  analyses_dir: output/analyses

aggregate:
  comparison_axes: [architecture, training_method, performance]
  generate_timeline: true
  analyze_trends: true

report:
  language: english
  summary_level: detailed
  output_dir: output/reports

store:
  knowledge_dir: knowledge
  max_results: 20

parallel:
  enabled: true
  max_workers: 4
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter paper-lens.yaml config file",
	Long: `Init writes a paper-lens.yaml file with the default configuration to
the current directory. Existing files are not overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "paper-lens.yaml"
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
