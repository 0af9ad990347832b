package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/internal/config"
	"github.com/aretw0/quill/internal/platform"
	"github.com/aretw0/quill/pkg/core"
)

var (
	configPath string
	adapter    string
	dataPath   string
	driver     string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Small colour-tagged notes kept in local storage",
	Long: `Quill keeps short text notes in a directory of Markdown files,
a SQLite database or memory, and lets you create, edit, list and watch them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loaded, err := loadConfig(cmd)
		if err != nil {
			fatal("loading config", err)
		}
		cfg = loaded

		level := slog.LevelInfo
		if cfg.Verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: quill.yaml in the notes root)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&dataPath, "path", "", "Notes directory (fs) or database file (sqlite)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "SQLite driver: sqlite or sqlite3")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// loadConfig merges the config file, the environment and explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	root := ""
	if wd, err := os.Getwd(); err == nil {
		if found, err := platform.FindRoot(wd); err == nil {
			root = found
		} else if !errors.Is(err, platform.ErrRootNotFound) {
			return nil, err
		}
	}
	if path == "" && root != "" {
		if candidate := filepath.Join(root, platform.ConfigFile); fileExists(candidate) {
			path = candidate
		}
	}

	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		c.Adapter = adapter
	}
	if flags.Changed("driver") {
		c.SQLite.Driver = driver
	}
	if flags.Changed("verbose") {
		c.Verbose = verbose
	}
	switch {
	case flags.Changed("path"):
		c.Path = dataPath
	case c.Path == "." && root != "":
		c.Path = root
	}
	return c, c.Validate()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// storeOptions turns the resolved config into platform options.
func storeOptions(extra ...quill.Option) []quill.Option {
	opts := []quill.Option{
		quill.WithAdapter(cfg.Adapter),
		quill.WithDriver(cfg.SQLite.Driver),
		quill.WithSystemDir(cfg.FS.SystemDir),
		quill.WithReadOnly(cfg.FS.ReadOnly),
		quill.WithWatch(cfg.FS.Watch),
		quill.WithDevSafety(cfg.DevSafety),
		quill.WithLogger(slog.Default()),
		quill.WithErrorHandler(func(err error) {
			slog.Error("background failure", "error", err)
		}),
	}
	return append(opts, extra...)
}

func openRepo(extra ...quill.Option) *core.Repository {
	repo, err := quill.New(cfg.Path, storeOptions(extra...)...)
	if err != nil {
		fatal("initializing quill", err)
	}
	return repo
}

func parseID(s string) core.ID {
	id, err := core.ParseID(s)
	if err != nil || id == 0 {
		fatal("parsing id", fmt.Errorf("invalid note id %q", s))
	}
	return id
}
