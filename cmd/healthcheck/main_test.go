package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbe(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	defer ok.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }))
	defer down.Close()

	if code := probe(ok.URL, time.Second); code != 0 {
		t.Errorf("probe(healthy) = %d, want 0", code)
	}
	if code := probe(down.URL, time.Second); code != 1 {
		t.Errorf("probe(unhealthy) = %d, want 1", code)
	}
	if code := probe("http://127.0.0.1:1/healthz", time.Second); code != 1 {
		t.Errorf("probe(unreachable) = %d, want 1", code)
	}
}
