// Package main provides the CLI entrypoint for tableforge.
//
// tableforge converts CSV game-design tables into JSON:
//   - Replaces [tag] placeholders with permanent numeric identifiers
//   - Persists the tag/identifier mapping across runs in a tag store
//   - Derives localization keys for translatable local_string columns
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tableforge/internal/config"
	"tableforge/internal/run"
	"tableforge/internal/tagstore"
)

var (
	// Global flags
	cfgPath string
	root    string
	verbose bool

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tableforge",
	Short: "tableforge - convert design tables to JSON with stable tag identifiers",
	Long: `tableforge converts CSV game-design tables into JSON.

Symbolic [tag] placeholders are replaced with permanent integer identifiers
allocated from a shared tag store, so every run of the converter resolves a
tag to the same number. local_string columns additionally get localization
keys derived and collected into a translation table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}

	// The config file can only raise the level; --verbose lowers it to
	// debug when the logger is built.
	if !verbose && cfg.Logging.Level != "" {
		if lvl, lerr := zapcore.ParseLevel(cfg.Logging.Level); lerr == nil {
			logger = logger.WithOptions(zap.IncreaseLevel(lvl))
		}
	}

	return cfg, nil
}

func newConvertCmd() *cobra.Command {
	var (
		diffFile        string
		storePath       string
		threshold       int64
		strictCollision bool
		reportJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert CSV tables under the root to JSON",
		Long: `Convert scans the root for CSV tables (or takes a changed-file list for
diff-based runs), resolves placeholders against the tag store, writes the
converted JSON tree, and saves the store. The store is saved even when
individual files fail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if storePath != "" {
				cfg.Store = storePath
			}
			if threshold > 0 {
				cfg.StartThreshold = threshold
			}
			if strictCollision {
				cfg.Resolve.Collision = "strict"
			}

			diffList, err := readDiffList(diffFile)
			if err != nil {
				return err
			}

			rep, err := run.Convert(run.Options{
				Root:     root,
				Config:   cfg,
				DiffList: diffList,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			if reportJSON {
				data, jerr := rep.JSON()
				if jerr != nil {
					return jerr
				}
				fmt.Println(string(data))
			}

			if !rep.OK() {
				return fmt.Errorf("%d file(s) failed", rep.Failed)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&diffFile, "diff-file", "",
		"file holding a newline-separated changed-file list; defaults to $GIT_DIFF_FILES")
	cmd.Flags().StringVar(&storePath, "store", "", "tag store path (overrides config)")
	cmd.Flags().Int64Var(&threshold, "threshold", 0, "allocation start threshold (overrides config)")
	cmd.Flags().BoolVar(&strictCollision, "strict-collision", false,
		"fail files whose literals collide with assigned identifiers")
	cmd.Flags().BoolVar(&reportJSON, "report", false, "print the run report as JSON")

	return cmd
}

// readDiffList resolves the diff source: an explicit file wins, otherwise
// the GIT_DIFF_FILES environment variable carries the list directly.
func readDiffList(diffFile string) (string, error) {
	if diffFile != "" {
		data, err := os.ReadFile(diffFile)
		if err != nil {
			return "", fmt.Errorf("reading diff list: %w", err)
		}

		return string(data), nil
	}

	return os.Getenv("GIT_DIFF_FILES"), nil
}

func newLocalizeCmd() *cobra.Command {
	var reportJSON bool

	cmd := &cobra.Command{
		Use:   "localize",
		Short: "Derive localization keys over an existing JSON tree",
		Long: `Localize scans the converted JSON tree for local_string columns, rewrites
their cells to derived keys, and writes the localization tables. Use it to
re-run key extraction without reconverting the source tables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rep, err := run.Localize(run.Options{
				Root:   root,
				Config: cfg,
				Logger: logger,
			})
			if err != nil {
				return err
			}

			if reportJSON {
				data, jerr := rep.JSON()
				if jerr != nil {
					return jerr
				}
				fmt.Println(string(data))
			}

			if !rep.OK() {
				return fmt.Errorf("%d file(s) failed", rep.Failed)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&reportJSON, "report", false, "print the run report as JSON")

	return cmd
}

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the tag store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print every tag record for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path := cfg.Store
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}

			store, lerr := tagstore.Load(path)
			if lerr != nil {
				logger.Warn("store unreadable", zap.Error(lerr))
			}

			spew.Dump(store.Records())

			return nil
		},
	})

	return cmd
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "tableforge.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&root, "root", "r", ".", "data root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newConvertCmd(), newLocalizeCmd(), newStoreCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
