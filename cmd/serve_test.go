package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithIndexRedirect(t *testing.T) {
	t.Parallel()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusNoContent)
	})

	handler := withIndexRedirect(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusFound {
		t.Fatalf("expected redirect status, got %d", res.Code)
	}
	if got := res.Header().Get("Location"); got != "/api/feeds" {
		t.Fatalf("unexpected redirect target: %q", got)
	}
	if nextCalled {
		t.Fatalf("expected wrapper to intercept root redirect")
	}
}

func TestWithIndexRedirect_PassesOtherPaths(t *testing.T) {
	t.Parallel()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/contracts?q=acme", nil)
	res := httptest.NewRecorder()
	withIndexRedirect(next).ServeHTTP(res, req)

	if !nextCalled || res.Code != http.StatusNoContent {
		t.Fatalf("expected request to reach next handler, got status %d", res.Code)
	}
}
