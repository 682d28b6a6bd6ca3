package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/haukened/rr-callblock/internal/callblock/common/clock"
	"github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/config"
	"github.com/haukened/rr-callblock/internal/callblock/gateways/locale"
	"github.com/haukened/rr-callblock/internal/callblock/normalize"
	"github.com/haukened/rr-callblock/internal/callblock/repos/contacts"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules/bloom"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules/bolt"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules/lru"
	"github.com/haukened/rr-callblock/internal/callblock/repos/settings"
	"github.com/haukened/rr-callblock/internal/callblock/services/blacklist"
)

const (
	version = "0.1.0-dev"
	appName = "callblock"
)

// Application holds the wired components for one command invocation.
type Application struct {
	config     *config.AppConfig
	clock      clock.Clock
	logger     log.Logger
	store      rules.Store
	repo       rules.Repository
	settings   *settings.Store
	contacts   *contacts.Directory
	normalizer *normalize.Normalizer
	service    *blacklist.Service
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// loadApplication reads configuration, configures logging and builds the app.
func loadApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("logging configuration error: %w", err)
	}
	log.Debug(map[string]any{
		"version":    version,
		"env":        cfg.Env,
		"store":      cfg.Store.Path,
		"cache_size": cfg.Store.CacheSize,
	}, "Starting "+appName)
	return buildApplication(cfg)
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	clk := clock.RealClock{}
	logger := log.GetLogger()

	store, repo, err := buildRules(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule repository: %w", err)
	}

	set, err := settings.New(settingsFromPolicy(cfg.Policy))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build settings: %w", err)
	}

	country, err := locale.New(cfg.Locale.NetworkCountry, cfg.Locale.Tag)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to resolve locale: %w", err)
	}
	norm := normalize.New(country)
	log.Debug(map[string]any{"region": norm.Region()}, "Number region resolved")

	dir := contacts.New(norm.Normalize, logger)
	if err := dir.LoadFile(cfg.Contacts.File); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}

	svc, err := blacklist.NewService(blacklist.Options{
		Rules:      repo,
		Settings:   set,
		Identity:   dir,
		Normalizer: norm,
		Logger:     logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Application{
		config:     cfg,
		clock:      clk,
		logger:     logger,
		store:      store,
		repo:       repo,
		settings:   set,
		contacts:   dir,
		normalizer: norm,
		service:    svc,
	}, nil
}

// buildRules opens the Bolt store and layers the cache and Bloom filter over it.
func buildRules(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (rules.Store, rules.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		return nil, nil, err
	}
	store, err := bolt.New(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open rule store: %w", err)
	}
	cache, err := lru.New(cfg.Store.CacheSize)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	repo, err := rules.NewRepository(rules.Options{
		Store:   store,
		Cache:   cache,
		Factory: bloom.NewFactory(),
		FPRate:  cfg.Store.BloomFPRate,
		Clock:   clk,
		Logger:  logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, repo, nil
}

// settingsFromPolicy converts configured policy into the settings store's
// integer representation.
func settingsFromPolicy(p config.PolicyConfig) settings.Values {
	return settings.Values{
		Enabled:           boolToInt(p.Enabled),
		NotifyEnabled:     boolToInt(p.Notify),
		PrivateNumberMode: p.PrivateNumberMode,
		UnknownNumberMode: p.UnknownNumberMode,
		RegexEnabled:      boolToInt(p.RegexEnabled),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Close releases the rule store.
func (app *Application) Close() error {
	return app.store.Close()
}
