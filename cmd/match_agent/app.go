package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/cache"
	"github.com/jonathan/candidate-matcher/internal/config"
	"github.com/jonathan/candidate-matcher/internal/db"
	"github.com/jonathan/candidate-matcher/internal/guardrails"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/jonathan/candidate-matcher/internal/pipeline"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// app holds state shared by every command
type app struct {
	configPath  string
	tenant      string
	mode        string
	verbose     bool
	metricsFile string

	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "match_agent",
		Short: "Candidate match scoring and shortlisting",
		Long: `Scores candidate pools against a job, selects shortlists under tenant guardrails and
monitors agent run health.

Settings are read from match_agent.yaml (or --config), MATCH_ environment variables and .env.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(_ *cobra.Command, _ []string) error { return a.setup() },
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error { return a.finish() },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default ./match_agent.yaml if present)")
	flags.StringVar(&a.tenant, "tenant", "", "Tenant ID (overrides config)")
	flags.StringVar(&a.mode, "mode", "", "Operating mode: pilot, production, sandbox or fire_drill (overrides config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Print detailed output")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file on success")

	root.AddCommand(newScoreCmd(a), newShortlistCmd(a), newWatchdogCmd(a), newGuardrailsCmd(a))
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.tenant != "" {
		cfg.Tenant = a.tenant
	}
	if a.mode != "" {
		cfg.Mode = a.mode
	}
	if _, err := types.ParseMode(cfg.Mode); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	return nil
}

func (a *app) finish() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", a.metricsFile, err)
	}
	return nil
}

// runMode returns the configured mode; init already validated it.
func (a *app) runMode() types.Mode {
	mode, _ := types.ParseMode(a.cfg.Mode)
	return mode
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

// deps are the optional storage backends for one command
type deps struct {
	db    *db.DB
	redis *redis.Client
	store guardrails.Store
}

// open connects to Postgres and Redis when configured. Connection failures
// are warnings: the command continues with an in-memory guardrail store.
func (a *app) open(ctx context.Context) *deps {
	d := &deps{}

	if a.cfg.Database.Enabled() {
		database, err := db.Connect(ctx, a.cfg.Database.URL)
		if err != nil {
			a.log.Warn("failed to connect to database, continuing without persistence", zap.Error(err))
		} else if err := database.Migrate(ctx); err != nil {
			a.log.Warn("failed to apply schema, continuing without persistence", zap.Error(err))
			database.Close()
		} else {
			d.db = database
			d.store = db.NewGuardrailStore(database)
			a.log.Debug("connected to database")
		}
	}

	if d.store == nil {
		d.store = guardrails.NewMemoryStore()
	}

	if a.cfg.Redis.Enabled() {
		client := cache.NewRedisClient(cache.RedisOptions{
			Addr:     a.cfg.Redis.Address,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err := cache.Ping(ctx, client); err != nil {
			a.log.Warn("guardrail cache unavailable", zap.Error(err))
			_ = client.Close()
		} else {
			d.redis = client
			d.store = cache.NewCachedStore(client, d.store,
				cache.WithTTL(a.cfg.Redis.TTL),
				cache.WithLogger(a.log),
				cache.WithMetrics(a.metrics),
			)
		}
	}

	return d
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

func (a *app) policy(d *deps) *guardrails.Policy {
	return guardrails.NewPolicy(d.store,
		guardrails.WithLogger(a.log),
		guardrails.WithMetrics(a.metrics),
	)
}

func (a *app) engine(d *deps, out io.Writer) *pipeline.Engine {
	opts := []pipeline.Option{
		pipeline.WithLogger(a.log),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithConcurrency(a.cfg.Scoring.Concurrency),
	}
	if d.db != nil {
		opts = append(opts, pipeline.WithRecorder(d.db))
	}
	if a.verbose {
		opts = append(opts, pipeline.WithPrinter(observability.NewPrinter(out)))
	}
	return pipeline.NewEngine(a.policy(d), opts...)
}

// writeJSON writes v as indented JSON to path, or to out when path is empty.
func writeJSON(out io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := out.Write(data)
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
}
