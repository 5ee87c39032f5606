package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/autofree/internal/config"
	"github.com/l3aro/autofree/internal/log"
	"github.com/l3aro/autofree/pkg/analysis"
	"github.com/l3aro/autofree/pkg/cache"
	"github.com/l3aro/autofree/pkg/inject"
	"github.com/l3aro/autofree/pkg/store"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "autofree",
	Short: "autofree - automatic release insertion for C",
	Long: `autofree finds, for every locally declared pointer in a C file that receives
a heap allocation, the last line that uses it, and inserts a release call there.

Commands:
  analyze     Compute deallocation points and write the interchange file
  inject      Insert release calls from an existing interchange file
  instrument  Analyze and inject in one step
  scan        Instrument every C file under a directory
  init        Write a configuration file interactively

Use "autofree [command] --help" for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" {
			return nil
		}
		return setup(cmd)
	},
}

var (
	configPath string
	verbose    bool
	logJSON    bool

	cfg    *config.Config
	logger log.Logger = log.Default()
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: global and project config)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	RootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON lines")

	RootCmd.AddCommand(analyzeCmd)
	RootCmd.AddCommand(injectCmd)
	RootCmd.AddCommand(instrumentCmd)
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(initCmd)
}

// setup loads the configuration and configures the logger.
func setup(cmd *cobra.Command) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = logJSON
	}

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger = log.New(log.LoggerConfig{
		Level:      level,
		JSONOutput: cfg.LogJSON,
		Output:     os.Stderr,
		Colors:     !cfg.LogJSON && os.Getenv("NO_COLOR") == "",
	})
	return nil
}

// session bundles the collaborators shared by the commands that analyze.
type session struct {
	store    *store.Store
	cache    *cache.LRUCache
	analyzer *analysis.Analyzer
	injector *inject.Injector
}

// openSession restores the persisted result cache and builds the analyzer
// and injector from the loaded configuration.
func openSession(ctx context.Context) *session {
	st := store.New()

	var c *cache.LRUCache
	if cfg.CacheSize > 0 {
		c = cache.New(cache.Options{
			MaxSize: cfg.CacheSize,
			OnEvict: func(key string) {
				logger.Debug("cache entry evicted", "key", key)
			},
		})
		if err := cache.LoadFromFile(ctx, st, c, cfg.CacheFile()); err != nil {
			// a corrupt cache only costs a re-analysis
			logger.Warn("discarding result cache", "path", cfg.CacheFile(), "error", err)
			c = cache.New(cache.Options{MaxSize: cfg.CacheSize})
		}
	}

	return &session{
		store: st,
		cache: c,
		analyzer: analysis.New(analysis.Options{
			AllocIndicator: cfg.AllocIndicator,
			Logger:         logger,
			Cache:          c,
			Store:          st,
		}),
		injector: &inject.Injector{
			Release: cfg.ReleaseFunc,
			Indent:  cfg.Indent,
			Logger:  logger,
		},
	}
}

// close persists the result cache.
func (s *session) close(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := cache.PersistToFile(ctx, s.store, s.cache, cfg.CacheFile()); err != nil {
		logger.Warn("failed to persist result cache", "path", cfg.CacheFile(), "error", err)
	}
}
