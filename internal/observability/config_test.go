package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMountRespectsToggle(t *testing.T) {
	disabled := http.NewServeMux()
	Mount(disabled, Config{})
	resp := httptest.NewRecorder()
	disabled.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when pprof disabled, got %d", resp.Code)
	}

	enabled := http.NewServeMux()
	Mount(enabled, Config{EnablePprof: true})
	resp = httptest.NewRecorder()
	enabled.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 when pprof enabled, got %d", resp.Code)
	}
}
