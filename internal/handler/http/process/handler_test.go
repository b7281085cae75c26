package process_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catchup-feed/internal/handler/http/process"
)

type mockTriggerer struct {
	triggerAllFn func(ctx context.Context) (int, error)
}

func (m *mockTriggerer) TriggerAll(ctx context.Context) (int, error) {
	return m.triggerAllFn(ctx)
}

func TestHandler_Success(t *testing.T) {
	h := process.Handler{Engine: &mockTriggerer{
		triggerAllFn: func(ctx context.Context) (int, error) { return 7, nil },
	}}

	req := httptest.NewRequest(http.MethodPost, "/process", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandler_EngineError(t *testing.T) {
	h := process.Handler{Engine: &mockTriggerer{
		triggerAllFn: func(ctx context.Context) (int, error) { return 0, errors.New("boom") },
	}}

	req := httptest.NewRequest(http.MethodPost, "/process", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body=%s", rec.Code, rec.Body.String())
	}
}
