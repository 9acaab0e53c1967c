// Command nrl browses Nominal Response Library catalogs and builds
// combined channel responses from a sensor and a data-logger choice.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seistools/nrl"
)

const version = "0.1.0"

var (
	cfgPath        string
	flagRoot       string
	flagTimeout    time.Duration
	flagFetchCache string
	verbose        bool
	jsonOut        bool

	cfg    config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "nrl",
	Short:   "Browse the Nominal Response Library and build channel responses",
	Version: version,
	Long: `nrl is a client for the IRIS Nominal Response Library
(http://ds.iris.edu/NRL/), a hierarchical catalog of instrument
responses. It walks the catalog by named choices (manufacturer, model,
configuration), prints RESP files for fully-specified instruments, and
combines a sensor and a data logger into a single channel response.

The catalog root may be a local directory holding a copy of the library
or a remote HTTP tree; remote fetches are cached on disk across runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cfgPath)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		fmt.Println(client)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default ~/.config/nrl/config.yaml)")
	pf.StringVar(&flagRoot, "root", "", "catalog root: local directory or URL (default "+nrl.DefaultRoot+")")
	pf.DurationVar(&flagTimeout, "timeout", 0, "remote request timeout (default 30s)")
	pf.StringVar(&flagFetchCache, "fetch-cache", defaultFetchCache(),
		"persistent fetch cache for remote catalogs (empty to disable)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&jsonOut, "json", false, "emit JSON instead of plain text")

	rootCmd.AddCommand(
		newBrowseCommand("sensors"),
		newBrowseCommand("dataloggers"),
		newRespCommand(),
		newResponseCommand(),
		newMCPCommand(),
	)
}

// newClient builds a catalog client from config file values overridden
// by flags.
func newClient() (*nrl.Client, error) {
	opts := nrl.DefaultOptions()
	opts.Logger = logger
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	if flagTimeout > 0 {
		opts.Timeout = flagTimeout
	}
	if cfg.CacheSize > 0 {
		opts.CacheSize = cfg.CacheSize
	}
	opts.DiskCache = cfg.FetchCache
	if flagFetchCache != defaultFetchCache() || opts.DiskCache == "" {
		opts.DiskCache = flagFetchCache
	}
	if opts.DiskCache != "" {
		_ = os.MkdirAll(filepath.Dir(opts.DiskCache), 0o755)
	}

	root := cfg.Root
	if flagRoot != "" {
		root = flagRoot
	}
	return nrl.New(root, opts)
}

// defaultFetchCache returns the per-user cache database path, or "" when
// no cache directory can be determined.
func defaultFetchCache() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "nrl", "fetch.db")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
