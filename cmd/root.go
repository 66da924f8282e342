package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/ids"
	"github.com/abhisek/studyloop/internal/metrics"
	"github.com/abhisek/studyloop/internal/platform/cache"
	"github.com/abhisek/studyloop/internal/platform/config"
	"github.com/abhisek/studyloop/internal/platform/logger"
	"github.com/abhisek/studyloop/internal/progress"
	"github.com/abhisek/studyloop/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "studyloop",
	Short:         "Track concept mastery and schedule spaced reviews",
	Long:          "studyloop keeps a prerequisite graph of concepts, scores mastery from exercise attempts and schedules spaced reviews.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYLOOP_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: studyloop.yaml in the config dir or working dir)")
	rootCmd.PersistentFlags().String("user", "", "Learner id (overrides the configured user)")

	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(exercisesCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(masteryCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// env is everything a command needs, opened from flags and configuration.
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *store.Store
	cache   *cache.Cache
	metrics *metrics.Metrics
	svc     *progress.Service
	user    ids.UserID
}

// openEnv loads configuration, opens the database and wires the service.
// Callers must defer close.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := &env{
		cfg:     cfg,
		log:     log,
		store:   s,
		metrics: metrics.New(),
		user:    ids.UserID(cfg.User),
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		e.user = ids.UserID(u)
	}

	deps := progress.Deps{
		Repos:   s.Repos(),
		Tx:      s,
		Logger:  log,
		Metrics: e.metrics,
	}
	if cfg.Cache.URL != "" {
		c, err := cache.New(cmd.Context(), cfg.Cache.URL, cfg.Cache.TTL)
		if err != nil {
			log.Warn("mastery cache disabled", "error", err)
		} else {
			e.cache = c
			deps.Cache = c
		}
	}

	e.svc = progress.NewService(deps, progress.Options{
		Mastery:    cfg.Mastery,
		Interleave: cfg.Scheduler.Interleave,
		QueueLimit: cfg.Scheduler.QueueLimit,
	})
	log.Debug("environment ready", "db", dbPath, "user", e.user, "cache", e.cache != nil)
	return e, nil
}

// close flushes metrics and releases resources.
func (e *env) close() error {
	var errs []error
	if path := e.cfg.Metrics.Textfile; path != "" {
		if err := e.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, err)
	}
	e.log.Sync()
	return errors.Join(errs...)
}

// withEnv runs fn with an opened env and closes it afterwards.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) (err error) {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := e.close(); err == nil {
			err = cerr
		}
	}()
	return fn(cmd.Context(), e)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then STUDYLOOP_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
