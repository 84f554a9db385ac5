package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/jonwraymond/restpipe/health"
	"github.com/jonwraymond/restpipe/token"
)

func TestBackendChecker(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   health.Status
	}{
		{"ok", http.StatusOK, health.StatusHealthy},
		{"rejected", http.StatusForbidden, health.StatusDegraded},
		{"server error", http.StatusServiceUnavailable, health.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
			})
			c := newTestClient(t, Config{
				BaseURL:     srv.URL,
				TokenStore:  newTestStore(t, token.Pair{Access: "a1", Refresh: "r1"}),
				EnableRetry: true,
				RetryCount:  3,
			})

			chk := NewBackendChecker(c, "/health")
			if chk.Name() != "backend" {
				t.Errorf("Name() = %q, want backend", chk.Name())
			}
			res := chk.Check(context.Background())
			if res.Status != tt.want {
				t.Errorf("Check().Status = %v, want %v", res.Status, tt.want)
			}
			if gotAuth != "" {
				t.Errorf("probe Authorization = %q, want none", gotAuth)
			}
			if n := srv.count("/health"); n != 1 {
				t.Errorf("probe calls = %d, want 1", n)
			}
			if res.Details["path"] != "/health" {
				t.Errorf("Details[path] = %v, want /health", res.Details["path"])
			}
		})
	}
}

func TestBackendChecker_Unreachable(t *testing.T) {
	c := newTestClient(t, Config{BaseURL: "http://127.0.0.1:1"})
	res := NewBackendChecker(c, "").Check(context.Background())
	if res.Status != health.StatusUnhealthy {
		t.Errorf("Check().Status = %v, want unhealthy", res.Status)
	}
	if res.Error == nil {
		t.Error("Check().Error = nil, want transport error")
	}
}
