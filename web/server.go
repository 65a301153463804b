// Package web serves the loaded contract and payment data as a read-only
// JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"contratos/loader"
	"contratos/search"
)

const (
	datasetKey         = "dataset"
	defaultLoadTimeout = 2 * time.Minute
)

// Loader produces the dataset served by the API.
type Loader interface {
	Load(ctx context.Context, feeds []loader.Feed) *loader.Result
}

type Options struct {
	// CacheTTL bounds how long a loaded dataset is served before it is
	// fetched again; zero keeps it until an explicit refresh.
	CacheTTL time.Duration
	// LoadTimeout bounds a dataset load. Loads are detached from the
	// request that triggered them, so a client going away does not abort them.
	LoadTimeout time.Duration
	Logger      *zap.Logger
}

type Server struct {
	loader Loader
	feeds  []loader.Feed
	logger *zap.Logger

	loadTimeout time.Duration

	cache    *expirable.LRU[string, *loader.Result]
	reloadMu sync.Mutex

	mux *http.ServeMux
}

type contractsResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []ContractView `json:"results"`
	Message string         `json:"message,omitempty"`
	Feeds   []FeedView     `json:"feeds"`
}

type paymentsResponse struct {
	Query   string        `json:"query"`
	Month   string        `json:"month,omitempty"`
	Count   int           `json:"count"`
	Results []PaymentView `json:"results"`
	Message string        `json:"message,omitempty"`
	Feeds   []FeedView    `json:"feeds"`
}

type monthsResponse struct {
	Months []string   `json:"months"`
	Feeds  []FeedView `json:"feeds"`
}

type feedsResponse struct {
	LoadedAt time.Time  `json:"loadedAt"`
	Feeds    []FeedView `json:"feeds"`
}

type errorResponse struct {
	Error string     `json:"error"`
	Feeds []FeedView `json:"feeds,omitempty"`
}

func NewServer(l Loader, feeds []loader.Feed, options Options) http.Handler {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	loadTimeout := options.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}

	server := &Server{
		loader:      l,
		feeds:       feeds,
		logger:      logger,
		loadTimeout: loadTimeout,
		cache:       expirable.NewLRU[string, *loader.Result](1, nil, options.CacheTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/contracts", server.handleAPIContracts)
	mux.HandleFunc("GET /api/payments", server.handleAPIPayments)
	mux.HandleFunc("GET /api/months", server.handleAPIMonths)
	mux.HandleFunc("GET /api/feeds", server.handleAPIFeeds)
	mux.HandleFunc("POST /api/refresh", server.handleAPIRefresh)
	mux.HandleFunc("GET /healthz", server.handleHealth)
	server.mux = mux

	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(recorder, r)
	s.logger.Debug("http request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", recorder.status),
		zap.Duration("elapsed", time.Since(started)),
	)
}

func (s *Server) handleAPIContracts(w http.ResponseWriter, r *http.Request) {
	dataset := s.dataset(r.Context())
	feeds := BuildFeedViews(dataset)
	if !feedAvailable(dataset, loader.FeedContracts) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: loader.UnavailableMessage, Feeds: feeds})
		return
	}

	term := r.URL.Query().Get("q")
	matches := search.Contracts(dataset.Contracts, term)
	response := contractsResponse{
		Query:   term,
		Count:   len(matches),
		Results: BuildContractViews(matches),
		Feeds:   feeds,
	}
	if len(matches) == 0 {
		response.Message = search.EmptyMessage
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAPIPayments(w http.ResponseWriter, r *http.Request) {
	query := search.Query{
		Term:  r.URL.Query().Get("q"),
		Month: strings.TrimSpace(r.URL.Query().Get("month")),
	}

	dataset := s.dataset(r.Context())
	feeds := BuildFeedViews(dataset)
	if !feedAvailable(dataset, loader.FeedPayments) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: loader.UnavailableMessage, Feeds: feeds})
		return
	}

	matches, err := search.Payments(dataset.Payments, query)
	if err != nil {
		if errors.Is(err, search.ErrInvalidMonth) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid month format (expected YYYY-MM or MM/YYYY)"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	response := paymentsResponse{
		Query:   query.Term,
		Month:   query.Month,
		Count:   len(matches),
		Results: BuildPaymentViews(matches),
		Feeds:   feeds,
	}
	if len(matches) == 0 {
		response.Message = search.EmptyMessage
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAPIMonths(w http.ResponseWriter, r *http.Request) {
	dataset := s.dataset(r.Context())
	feeds := BuildFeedViews(dataset)
	if !feedAvailable(dataset, loader.FeedPayments) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: loader.UnavailableMessage, Feeds: feeds})
		return
	}
	writeJSON(w, http.StatusOK, monthsResponse{Months: search.Months(dataset.Payments), Feeds: feeds})
}

func (s *Server) handleAPIFeeds(w http.ResponseWriter, r *http.Request) {
	dataset := s.dataset(r.Context())
	writeJSON(w, http.StatusOK, feedsResponse{LoadedAt: dataset.LoadedAt, Feeds: BuildFeedViews(dataset)})
}

func (s *Server) handleAPIRefresh(w http.ResponseWriter, r *http.Request) {
	dataset := s.reload(r.Context())
	writeJSON(w, http.StatusOK, feedsResponse{LoadedAt: dataset.LoadedAt, Feeds: BuildFeedViews(dataset)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dataset returns the cached result, loading it when the cache is empty or
// expired. Concurrent misses trigger a single load.
func (s *Server) dataset(ctx context.Context) *loader.Result {
	if cached, ok := s.cache.Get(datasetKey); ok {
		return cached
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	if cached, ok := s.cache.Get(datasetKey); ok {
		return cached
	}
	return s.loadLocked(ctx)
}

func (s *Server) reload(ctx context.Context) *loader.Result {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	return s.loadLocked(ctx)
}

// loadLocked loads the dataset and caches it unless every feed failed; a
// fully failed load is retried on the next request.
func (s *Server) loadLocked(ctx context.Context) *loader.Result {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
	defer cancel()

	result := s.loader.Load(ctx, s.feeds)
	available := 0
	for _, status := range result.Feeds {
		if !status.Available() {
			s.logger.Warn("feed unavailable", zap.String("feed", status.Name), zap.Error(status.Err))
			continue
		}
		available++
	}

	if len(result.Feeds) > 0 && available == 0 {
		s.cache.Remove(datasetKey)
		return result
	}
	s.cache.Add(datasetKey, result)
	return result
}

func feedAvailable(result *loader.Result, name string) bool {
	status, ok := result.Feed(name)
	return ok && status.Available()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
