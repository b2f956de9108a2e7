package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lukman83/skinscout/config"
	"github.com/lukman83/skinscout/internal/catalog"
	"github.com/lukman83/skinscout/internal/favorites"
	"github.com/lukman83/skinscout/internal/filter"
	"github.com/lukman83/skinscout/internal/httputil"
	"github.com/lukman83/skinscout/internal/makeupapi"
	"github.com/lukman83/skinscout/internal/openbeautyfacts"
	"github.com/lukman83/skinscout/internal/platform"
	"github.com/lukman83/skinscout/internal/storage"
	"github.com/lukman83/skinscout/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

var (
	cfg     *config.Config
	logger  *zap.Logger
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "skinscout",
	Short: "skinscout - skincare catalog browser CLI & MCP server",
	Long: `Browse skincare products from the public makeup catalog, filter them by
text, type, price and skin concern, and keep a local list of favorites.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("source", "makeup", "Catalog source")
	rootCmd.PersistentFlags().String("delay-profile", "normal", "Delay profile: none, gentle, normal, aggressive")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().String("proxy", "", "Forward proxy URL")
	rootCmd.PersistentFlags().Duration("timeout", catalog.DefaultSearchTimeout, "Search timeout")
	rootCmd.PersistentFlags().String("db", "", "Path to the favorites database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg = config.DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}

	// Override from flags
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("delay-profile") {
		cfg.DelayProfile, _ = flags.GetString("delay-profile")
	}
	if flags.Changed("respect-robots") {
		cfg.RespectRobots, _ = flags.GetBool("respect-robots")
	}
	if flags.Changed("proxy") {
		cfg.ProxyURL, _ = flags.GetString("proxy")
	}
	if flags.Changed("timeout") {
		cfg.SearchTimeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var err error
	logger, err = buildLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	// stdout carries command output; logs go to stderr.
	zc.OutputPaths = []string{"stderr"}
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// buildHTTPClient creates the polite HTTP client from config.
func buildHTTPClient() (*http.Client, error) {
	base, err := transport.NewBase(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	jitter, err := transport.NewJitter(transport.Profile(cfg.DelayProfile))
	if err != nil {
		return nil, err
	}

	var robots *transport.RobotsChecker
	if cfg.RespectRobots {
		robots = transport.NewRobotsChecker(&http.Client{Transport: base, Timeout: 10 * time.Second}, logger)
	}

	return httputil.NewHTTPClient(&transport.Transport{
		Base:        base,
		UserAgent:   cfg.UserAgent,
		Robots:      robots,
		Jitter:      jitter,
		RateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}), nil
}

// app holds the wired components a command needs.
type app struct {
	registry *platform.Registry
	service  *catalog.Service
	store    *favorites.Store
	writer   *favorites.Writer
	repo     *storage.FavoritesRepository
	db       *storage.DB
}

func newApp(ctx context.Context) (*app, error) {
	db, err := storage.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	repo := storage.NewFavoritesRepository(db, logger)
	writer := favorites.NewWriter(repo, logger)
	store := favorites.NewStore(writer)
	if err := store.Load(ctx, repo); err != nil {
		logger.Warn("starting without saved favorites", zap.Error(err))
	}

	a := &app{store: store, writer: writer, repo: repo, db: db}

	client, err := buildHTTPClient()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.registry = platform.NewRegistry()
	a.registry.RegisterCatalog(makeupapi.NewClient(client, cfg.CatalogURL, logger))
	a.registry.RegisterSearcher(openbeautyfacts.NewClient(client, cfg.BeautyFactsURL, logger))

	source, _ := rootCmd.PersistentFlags().GetString("source")
	cat, err := a.registry.Catalog(source)
	if err != nil {
		a.Close()
		return nil, err
	}
	searcher, err := a.registry.Searcher("openbeautyfacts")
	if err != nil {
		a.Close()
		return nil, err
	}

	engine := filter.NewEngine(filter.NewEnricher(nil, logger), logger)
	a.service = catalog.NewService(cat, engine, store, catalog.Options{
		SearchTimeout:  cfg.SearchTimeout,
		MaxConcurrent:  cfg.MaxConcurrent,
		FallbackBrands: cfg.FallbackBrands,
		Searcher:       searcher,
	}, logger)
	return a, nil
}

// Close flushes pending favorite writes and closes the database.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.writer.Close(ctx); err != nil {
		logger.Error("favorite writes not flushed", zap.Error(err))
	}
	if err := a.db.Close(); err != nil {
		logger.Error("failed to close database", zap.Error(err))
	}
}
