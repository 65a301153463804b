// Package loader retrieves the contract and payment feeds, decodes them and
// resolves their records. Each feed succeeds or fails on its own.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"contratos/contract"
	"contratos/fetch"
	"contratos/fields"
	"contratos/storage"
	"contratos/tabular"
)

const (
	FeedContracts = "contracts"
	FeedPayments  = "payments"

	SourceRemote   = "remote"
	SourceSnapshot = "snapshot"
)

// UnavailableMessage is the notice shown for a feed that could not be loaded.
const UnavailableMessage = "Não foi possível carregar os dados"

// Feed describes one published spreadsheet. A feed with an empty URL is disabled.
type Feed struct {
	Name    string
	URL     string
	Format  string
	Options tabular.Options
}

func (f Feed) Enabled() bool {
	return strings.TrimSpace(f.URL) != ""
}

// SnapshotStore keeps copies of successfully fetched feed bodies.
type SnapshotStore interface {
	SaveSnapshot(feed, sourceURL string, body []byte, fetchedAt time.Time) (bool, error)
	LatestSnapshot(feed string) (storage.Snapshot, bool, error)
	PruneSnapshots(feed string, keep int) (int64, error)
}

type FeedStatus struct {
	Name      string
	Source    string
	FetchedAt time.Time
	Header    []string
	Rows      int
	Warnings  []tabular.Warning
	// FetchErr is the retrieval failure that caused a snapshot fallback.
	FetchErr error
	Err      error
}

func (s FeedStatus) Available() bool {
	return s.Err == nil
}

type Result struct {
	Feeds     []FeedStatus
	Contracts []contract.Contract
	Payments  []contract.Payment
	LoadedAt  time.Time
}

// Feed returns the status of the named feed.
func (r *Result) Feed(name string) (FeedStatus, bool) {
	for _, status := range r.Feeds {
		if status.Name == name {
			return status, true
		}
	}
	return FeedStatus{}, false
}

type Options struct {
	Client   fetch.Client
	Store    SnapshotStore
	Resolver *fields.Resolver
	Logger   *zap.Logger
	// Keep is the number of snapshots retained per feed; 0 disables pruning.
	Keep int
	Now  func() time.Time
}

type Service struct {
	client   fetch.Client
	store    SnapshotStore
	resolver *fields.Resolver
	logger   *zap.Logger
	keep     int
	now      func() time.Time
}

func NewService(options Options) (*Service, error) {
	if options.Client == nil {
		return nil, errors.New("fetch client is required")
	}
	resolver := options.Resolver
	if resolver == nil {
		resolver = fields.Default()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		client:   options.Client,
		store:    options.Store,
		resolver: resolver,
		logger:   logger,
		keep:     options.Keep,
		now:      now,
	}, nil
}

// Load fetches every enabled feed concurrently. It never fails as a whole: a
// feed that cannot be fetched falls back to its latest snapshot, and if there
// is none its status carries the error while the other feeds load normally.
func (s *Service) Load(ctx context.Context, feeds []Feed) *Result {
	enabled := make([]Feed, 0, len(feeds))
	for _, feed := range feeds {
		if feed.Enabled() {
			enabled = append(enabled, feed)
			continue
		}
		s.logger.Debug("feed disabled", zap.String("feed", feed.Name))
	}

	statuses := make([]FeedStatus, len(enabled))
	recordSets := make([][]tabular.Record, len(enabled))

	// A plain Group: one feed failing must not cancel the others.
	var group errgroup.Group
	for i, feed := range enabled {
		group.Go(func() error {
			statuses[i], recordSets[i] = s.loadFeed(ctx, feed)
			return statuses[i].Err
		})
	}
	if err := group.Wait(); err != nil {
		s.logger.Warn("feed unavailable", zap.Error(err))
	}

	result := &Result{
		Feeds:     statuses,
		Contracts: make([]contract.Contract, 0),
		Payments:  make([]contract.Payment, 0),
		LoadedAt:  s.now(),
	}
	for i, feed := range enabled {
		if !statuses[i].Available() {
			continue
		}
		switch feed.Name {
		case FeedContracts:
			result.Contracts = contract.MapContracts(s.resolver, recordSets[i])
		case FeedPayments:
			result.Payments = contract.MapPayments(s.resolver, recordSets[i])
		}
	}
	return result
}

// LoadRecords loads a single feed without resolving it, for header diagnostics.
func (s *Service) LoadRecords(ctx context.Context, feed Feed) (FeedStatus, []tabular.Record) {
	return s.loadFeed(ctx, feed)
}

func (s *Service) loadFeed(ctx context.Context, feed Feed) (FeedStatus, []tabular.Record) {
	status := FeedStatus{Name: feed.Name}
	logger := s.logger.With(zap.String("feed", feed.Name))

	if feed.Name != FeedContracts && feed.Name != FeedPayments {
		status.Err = fmt.Errorf("unknown feed %q", feed.Name)
		return status, nil
	}

	reader, err := tabular.ReaderForFormat(feed.Format, feed.Options, logger)
	if err != nil {
		status.Err = fmt.Errorf("feed %s: %w", feed.Name, err)
		return status, nil
	}

	body, err := s.client.Fetch(ctx, feed.URL)
	if err == nil {
		decoded, readErr := reader.Read(body)
		if readErr == nil {
			fetchedAt := s.now()
			s.saveSnapshot(logger, feed, body, fetchedAt)
			status.Source = SourceRemote
			status.FetchedAt = fetchedAt
			return finish(status, decoded), decoded.Records
		}
		err = fmt.Errorf("decode: %w", readErr)
	}

	status.FetchErr = fmt.Errorf("load feed %s from %s: %w", feed.Name, feed.URL, err)
	logger.Warn("feed retrieval failed", zap.Error(err))

	if s.store == nil {
		status.Err = status.FetchErr
		return status, nil
	}

	snapshot, ok, err := s.store.LatestSnapshot(feed.Name)
	if err != nil {
		status.Err = errors.Join(status.FetchErr, fmt.Errorf("read snapshot: %w", err))
		return status, nil
	}
	if !ok {
		status.Err = errors.Join(status.FetchErr, storage.ErrSnapshotNotFound)
		return status, nil
	}

	decoded, err := reader.Read(snapshot.Body)
	if err != nil {
		status.Err = errors.Join(status.FetchErr, fmt.Errorf("decode snapshot %d: %w", snapshot.ID, err))
		return status, nil
	}

	logger.Info("serving feed from snapshot",
		zap.Int64("snapshot", snapshot.ID),
		zap.Time("fetched_at", snapshot.FetchedAt),
	)
	status.Source = SourceSnapshot
	status.FetchedAt = snapshot.FetchedAt
	return finish(status, decoded), decoded.Records
}

func (s *Service) saveSnapshot(logger *zap.Logger, feed Feed, body []byte, fetchedAt time.Time) {
	if s.store == nil {
		return
	}
	saved, err := s.store.SaveSnapshot(feed.Name, feed.URL, body, fetchedAt)
	if err != nil {
		logger.Warn("save snapshot failed", zap.Error(err))
		return
	}
	if !saved || s.keep <= 0 {
		return
	}
	pruned, err := s.store.PruneSnapshots(feed.Name, s.keep)
	if err != nil {
		logger.Warn("prune snapshots failed", zap.Error(err))
		return
	}
	if pruned > 0 {
		logger.Debug("pruned snapshots", zap.Int64("deleted", pruned))
	}
}

func finish(status FeedStatus, decoded tabular.Result) FeedStatus {
	status.Header = decoded.Header
	status.Rows = len(decoded.Records)
	status.Warnings = decoded.Warnings
	return status
}
