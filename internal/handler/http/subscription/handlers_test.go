package subscription_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"catchup-feed/internal/domain/entity"
	"catchup-feed/internal/handler/http/subscription"
	subUC "catchup-feed/internal/usecase/subscription"
)

type mockRepo struct {
	getFn         func(ctx context.Context, id string) (*entity.Subscription, error)
	listEnabledFn func(ctx context.Context) ([]*entity.Subscription, error)
	createFn      func(ctx context.Context, s *entity.Subscription) error
	updateFn      func(ctx context.Context, s *entity.Subscription) error
	deleteFn      func(ctx context.Context, id string) error
}

func (m *mockRepo) Get(ctx context.Context, id string) (*entity.Subscription, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) ListEnabled(ctx context.Context) ([]*entity.Subscription, error) {
	return m.listEnabledFn(ctx)
}
func (m *mockRepo) ListByChannel(ctx context.Context, ch entity.Channel) ([]*entity.Subscription, error) {
	return nil, nil
}
func (m *mockRepo) Create(ctx context.Context, s *entity.Subscription) error {
	return m.createFn(ctx, s)
}
func (m *mockRepo) Update(ctx context.Context, s *entity.Subscription) error {
	return m.updateFn(ctx, s)
}
func (m *mockRepo) Delete(ctx context.Context, id string) error { return m.deleteFn(ctx, id) }

func TestListHandler_Success(t *testing.T) {
	repo := &mockRepo{listEnabledFn: func(ctx context.Context) ([]*entity.Subscription, error) {
		return []*entity.Subscription{{ID: "sub-1", Channel: entity.ChannelPush, Enabled: true}}, nil
	}}
	h := subscription.ListHandler{Svc: subUC.NewService(repo)}

	req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateHandler_Success(t *testing.T) {
	repo := &mockRepo{createFn: func(ctx context.Context, s *entity.Subscription) error { return nil }}
	h := subscription.CreateHandler{Svc: subUC.NewService(repo)}

	body := []byte(`{"channel":"webhook","webhook_url":"https://example.com/hook","webhook_secret":"shh"}`)
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
	}
}

func TestDeleteHandler_Success(t *testing.T) {
	repo := &mockRepo{deleteFn: func(ctx context.Context, id string) error {
		if id != "sub-1" {
			t.Fatalf("unexpected id: %s", id)
		}
		return nil
	}}
	h := subscription.DeleteHandler{Svc: subUC.NewService(repo)}

	req := httptest.NewRequest(http.MethodDelete, "/subscriptions/sub-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
