package db

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labms/labms/internal/platform/response"
)

func TestHealthEnvelope_Healthy(t *testing.T) {
	stats := &PoolStats{
		TotalConns:    5,
		IdleConns:     3,
		AcquiredConns: 2,
		MaxConns:      10,
		Healthy:       true,
	}

	status, env := healthEnvelope(stats, nil)

	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if !env.Success {
		t.Error("expected success envelope")
	}
	if env.Version != response.Version {
		t.Errorf("expected version %q, got %q", response.Version, env.Version)
	}
	if env.Message != "database healthy" {
		t.Errorf("unexpected message %q", env.Message)
	}
	got, ok := env.Data.(*PoolStats)
	if !ok {
		t.Fatalf("expected pool stats as data, got %T", env.Data)
	}
	if !got.Healthy || got.TotalConns != 5 {
		t.Errorf("unexpected stats in envelope: %+v", got)
	}
}

func TestHealthEnvelope_PingFailure(t *testing.T) {
	stats := &PoolStats{
		TotalConns: 5,
		MaxConns:   10,
		Healthy:    true,
	}

	status, env := healthEnvelope(stats, errors.New("connection refused"))

	if status != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", status)
	}
	if env.Success {
		t.Error("expected error envelope")
	}
	if len(env.Errors) != 1 || env.Errors[0] != "connection refused" {
		t.Errorf("expected ping error in envelope, got %v", env.Errors)
	}

	// The snapshot rides along and is marked unhealthy regardless of the
	// pool counters.
	got, ok := env.Data.(*PoolStats)
	if !ok {
		t.Fatalf("expected pool stats as data, got %T", env.Data)
	}
	if got.Healthy {
		t.Error("expected stats marked unhealthy after a failed ping")
	}
}
