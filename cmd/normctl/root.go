package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/act-placemat/normalizer/internal/textstats"
	"github.com/act-placemat/normalizer/pkg/config"
	"github.com/act-placemat/normalizer/pkg/logger"
)

var (
	configPath string
	logLevel   string
	compact    bool
)

// appConfig is loaded once per invocation in PersistentPreRunE.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "normctl",
	Short: "Normalize, score and clean records offline",
	Long: `normctl runs the record normalization pipeline against local JSON files.
Input is a JSON object or array read from a file, or from stdin when the file is "-".
Nothing is persisted.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level written to stderr")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "Print compact JSON")
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(logLevel, "console", "stderr"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	var err error
	if configPath != "" {
		appConfig, err = config.LoadFile(configPath)
	} else {
		appConfig, err = config.Load()
	}
	if err != nil {
		return err
	}

	if appConfig.Analytics.LexiconPath != "" {
		lex, err := textstats.LoadLexicon(appConfig.Analytics.LexiconPath)
		if err != nil {
			return fmt.Errorf("failed to load lexicon: %w", err)
		}
		textstats.SetDefault(textstats.NewAnalyzer(lex))
	}
	return nil
}

// readInput decodes the JSON document named by path.
func readInput(cmd *cobra.Command, path string) (any, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var data any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// summary prints a one-line result to stderr, green when nothing failed.
func summary(cmd *cobra.Command, failed bool, format string, args ...any) {
	c := color.New(color.FgGreen, color.Bold)
	if failed {
		c = color.New(color.FgYellow, color.Bold)
	}
	c.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
