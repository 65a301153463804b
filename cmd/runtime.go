package cmd

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contratos/config"
	"contratos/fetch"
	"contratos/fields"
	"contratos/internal/logging"
	"contratos/loader"
	"contratos/storage"
)

// appRuntime holds the collaborators shared by the data commands.
type appRuntime struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *fields.Resolver
	store    *storage.SQLiteStore
	service  *loader.Service
	feeds    []loader.Feed
}

func newRuntime() (*appRuntime, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, err
	}
	return newRuntimeFromConfig(cfg)
}

func newRuntimeFromConfig(cfg *config.Config) (*appRuntime, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, verbose)
	if err != nil {
		return nil, err
	}

	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}
	resolver := fields.NewResolver(schema)

	rt := &appRuntime{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		feeds:    feedsFromConfig(cfg),
	}

	options := loader.Options{
		Client: fetch.NewClient(fetch.ClientConfig{
			UserAgent: cfg.HTTP.UserAgent,
			Timeout:   cfg.HTTP.Timeout,
			MaxBytes:  cfg.HTTP.MaxBytes,
		}),
		Resolver: resolver,
		Logger:   logger,
		Keep:     cfg.Storage.Keep,
	}

	if path := strings.TrimSpace(cfg.Storage.SnapshotDB); path != "" {
		store, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		rt.store = store
		options.Store = store
	}

	service, err := loader.NewService(options)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.service = service
	return rt, nil
}

func (rt *appRuntime) Close() {
	if rt.store != nil {
		_ = rt.store.Close()
	}
	_ = rt.logger.Sync()
}

// load fetches the named feeds (all of them when no name is given) and prints
// a notice for each feed that could not be loaded or was served from a snapshot.
func (rt *appRuntime) load(ctx context.Context, names ...string) *loader.Result {
	feeds := rt.feeds
	if len(names) > 0 {
		feeds = make([]loader.Feed, 0, len(names))
		for _, feed := range rt.feeds {
			if slices.Contains(names, feed.Name) {
				feeds = append(feeds, feed)
			}
		}
	}

	result := rt.service.Load(ctx, feeds)
	for _, status := range result.Feeds {
		switch {
		case !status.Available():
			rt.logger.Debug("feed failed", zap.String("feed", status.Name), zap.Error(status.Err))
			fmt.Printf("%s (%s).\n", loader.UnavailableMessage, status.Name)
		case status.Source == loader.SourceSnapshot:
			fmt.Printf("Feed %s unreachable; using snapshot from %s.\n", status.Name, status.FetchedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	return result
}

func feedsFromConfig(cfg *config.Config) []loader.Feed {
	return []loader.Feed{
		{
			Name:    loader.FeedContracts,
			URL:     cfg.Feeds.Contracts.URL,
			Format:  cfg.Feeds.Contracts.Format,
			Options: cfg.DecodeOptions(cfg.Feeds.Contracts),
		},
		{
			Name:    loader.FeedPayments,
			URL:     cfg.Feeds.Payments.URL,
			Format:  cfg.Feeds.Payments.Format,
			Options: cfg.DecodeOptions(cfg.Feeds.Payments),
		},
	}
}

// requireFeed returns the named feed, failing when it has no URL configured.
func (rt *appRuntime) requireFeed(name string) (loader.Feed, error) {
	feed, err := feedByName(rt.feeds, name)
	if err != nil {
		return loader.Feed{}, err
	}
	if !feed.Enabled() {
		return loader.Feed{}, fmt.Errorf("feed %s is not configured (set feeds.%s.url)", name, name)
	}
	return feed, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func feedByName(feeds []loader.Feed, name string) (loader.Feed, error) {
	for _, feed := range feeds {
		if feed.Name == name {
			return feed, nil
		}
	}
	return loader.Feed{}, fmt.Errorf("unknown feed %q (valid: %s, %s)", name, loader.FeedContracts, loader.FeedPayments)
}
