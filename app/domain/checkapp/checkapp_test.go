package checkapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

func Test_Readiness(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	a := newApp("test", logger.Discard(), nil, map[string]func(ctx context.Context) error{"session": ok})
	resp := a.readiness(context.Background(), httptest.NewRequest(http.MethodGet, "/v1/readiness", nil)).(Readiness)
	if resp.HTTPStatus() != http.StatusOK || resp.Checks["session"] != "ok" {
		t.Errorf("Should be ready, got %+v", resp)
	}

	a = newApp("test", logger.Discard(), nil, map[string]func(ctx context.Context) error{"session": ok, "cache": down})
	resp = a.readiness(context.Background(), httptest.NewRequest(http.MethodGet, "/v1/readiness", nil)).(Readiness)
	if resp.HTTPStatus() != http.StatusServiceUnavailable {
		t.Errorf("Should not be ready, got %+v", resp)
	}
	if resp.Checks["cache"] != "connection refused" || resp.Checks["session"] != "ok" {
		t.Errorf("Should report each check, got %v", resp.Checks)
	}
}

func Test_Liveness(t *testing.T) {
	a := newApp("1.2.3", logger.Discard(), nil, nil)

	info := a.liveness(context.Background(), httptest.NewRequest(http.MethodGet, "/v1/liveness", nil)).(Info)
	if info.Status != "up" || info.Build != "1.2.3" || info.GOMAXPROCS == 0 {
		t.Errorf("got %+v", info)
	}
}
