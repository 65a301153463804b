package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"contratos/contract"
	"contratos/loader"
	"contratos/search"
)

type fakeLoader struct {
	calls  atomic.Int32
	result func() *loader.Result
}

func (f *fakeLoader) Load(_ context.Context, _ []loader.Feed) *loader.Result {
	f.calls.Add(1)
	return f.result()
}

func healthyResult() *loader.Result {
	return &loader.Result{
		Feeds: []loader.FeedStatus{
			{Name: loader.FeedContracts, Source: loader.SourceRemote, Rows: 2, FetchedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
			{Name: loader.FeedPayments, Source: loader.SourceSnapshot, Rows: 3, FetchedAt: time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)},
		},
		Contracts: []contract.Contract{
			{RowNumber: 2, Creditor: "ACME LTDA", ContractNumber: "2024-001", ValidityStatus: "VIGENTE", DaysToExpiry: "12", MostRecent: "Sim"},
			{RowNumber: 3, ContractNumber: "2024-002"},
		},
		Payments: []contract.Payment{
			{RowNumber: 2, Creditor: "ACME LTDA", ContractNumber: "2024-001", PaymentDate: "05/03/2025"},
			{RowNumber: 3, Creditor: "ACME LTDA", ContractNumber: "2024-001", PaymentDate: "10/04/2025"},
			{RowNumber: 4, Creditor: "BETA SA", ContractNumber: "2024-002", PaymentDate: "12/04/2025"},
		},
		LoadedAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func paymentsDownResult() *loader.Result {
	result := healthyResult()
	result.Feeds[1] = loader.FeedStatus{Name: loader.FeedPayments, Err: errors.New("status 503")}
	result.Payments = []contract.Payment{}
	return result
}

func newTestServer(t *testing.T, fake *fakeLoader) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(fake, nil, Options{CacheTTL: time.Minute}))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestServer_ContractsSearch(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeLoader{result: healthyResult})

	var body contractsResponse
	status := getJSON(t, ts.URL+"/api/contracts?q=acme", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Count)
	require.Empty(t, body.Message)

	card := body.Results[0]
	require.Equal(t, "ACME LTDA", card.Title)
	require.True(t, card.Current)
	require.True(t, card.ExpiresSoon)
	require.True(t, card.MostRecentFlag)
	require.Len(t, body.Feeds, 2)
	require.True(t, body.Feeds[1].Stale)
}

func TestServer_EmptyQueryReturnsEmptyState(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeLoader{result: healthyResult})

	var body contractsResponse
	status := getJSON(t, ts.URL+"/api/contracts?q=", &body)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, body.Results)
	require.Empty(t, body.Results)
	require.Equal(t, search.EmptyMessage, body.Message)
}

func TestServer_PaymentsByMonth(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeLoader{result: healthyResult})

	var body paymentsResponse
	status := getJSON(t, ts.URL+"/api/payments?month=2025-04", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, body.Count)
	require.Equal(t, "2025-04", body.Results[0].Month)

	status = getJSON(t, ts.URL+"/api/payments?q=beta&month=04%2F2025", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, body.Count)
}

func TestServer_PaymentsInvalidMonth(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeLoader{result: healthyResult})

	var body errorResponse
	status := getJSON(t, ts.URL+"/api/payments?month=marco", &body)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body.Error, "invalid month")
}

func TestServer_FailedFeedDoesNotBlockTheOther(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeLoader{result: paymentsDownResult})

	var contracts contractsResponse
	status := getJSON(t, ts.URL+"/api/contracts?q=2024", &contracts)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, contracts.Count)
	require.False(t, contracts.Feeds[1].Available)
	require.Equal(t, loader.UnavailableMessage, contracts.Feeds[1].Message)

	var payments errorResponse
	status = getJSON(t, ts.URL+"/api/payments?q=acme", &payments)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, loader.UnavailableMessage, payments.Error)

	var months errorResponse
	status = getJSON(t, ts.URL+"/api/months", &months)
	require.Equal(t, http.StatusServiceUnavailable, status)
}

func TestServer_Months(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeLoader{result: healthyResult})

	var body monthsResponse
	status := getJSON(t, ts.URL+"/api/months", &body)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []string{"2025-04", "2025-03"}, body.Months)
}

func TestServer_CachesDatasetUntilRefresh(t *testing.T) {
	t.Parallel()

	fake := &fakeLoader{result: healthyResult}
	ts := newTestServer(t, fake)

	var feeds feedsResponse
	for range 3 {
		require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/feeds", &feeds))
	}
	require.Equal(t, int32(1), fake.calls.Load())

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(2), fake.calls.Load())

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/feeds", &feeds))
	require.Equal(t, int32(2), fake.calls.Load())
	require.Len(t, feeds.Feeds, 2)
}

func TestServer_ExpiredCacheReloads(t *testing.T) {
	t.Parallel()

	fake := &fakeLoader{result: healthyResult}
	ts := httptest.NewServer(NewServer(fake, nil, Options{CacheTTL: 20 * time.Millisecond}))
	defer ts.Close()

	var feeds feedsResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/feeds", &feeds))
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/feeds", &feeds))
	require.Equal(t, int32(2), fake.calls.Load())
}

type contextLoader struct {
	calls atomic.Int32
}

// Load fails every feed when ctx is already done, like a fetch client would.
func (c *contextLoader) Load(ctx context.Context, _ []loader.Feed) *loader.Result {
	c.calls.Add(1)
	if ctx.Err() != nil {
		return allDownResult()
	}
	return healthyResult()
}

func allDownResult() *loader.Result {
	return &loader.Result{
		Feeds: []loader.FeedStatus{
			{Name: loader.FeedContracts, Err: errors.New("status 503")},
			{Name: loader.FeedPayments, Err: errors.New("status 503")},
		},
		Contracts: []contract.Contract{},
		Payments:  []contract.Payment{},
	}
}

func TestServer_LoadIsDetachedFromRequestContext(t *testing.T) {
	t.Parallel()

	fake := &contextLoader{}
	handler := NewServer(fake, nil, Options{CacheTTL: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/contracts?q=acme", nil).WithContext(ctx))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/contracts?q=acme", nil))
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, int32(1), fake.calls.Load())
}

func TestServer_FullyFailedLoadIsNotCached(t *testing.T) {
	t.Parallel()

	var loads atomic.Int32
	fake := &fakeLoader{result: func() *loader.Result {
		if loads.Add(1) == 1 {
			return allDownResult()
		}
		return healthyResult()
	}}
	ts := newTestServer(t, fake)

	var failed errorResponse
	require.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/api/contracts?q=acme", &failed))
	require.Equal(t, "Não foi possível carregar os dados", failed.Error)

	var body contractsResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/contracts?q=acme", &body))
	require.Equal(t, 1, body.Count)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/contracts?q=acme", &body))
	require.Equal(t, int32(2), fake.calls.Load())
}

func TestServer_HealthAndMethods(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, &fakeLoader{result: healthyResult})

	var health map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", &health))
	require.Equal(t, "ok", health["status"])

	resp, err := http.Get(ts.URL + "/api/refresh")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
