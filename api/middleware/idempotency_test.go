package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agrilinkhq/agrilink-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "middleware-test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	sets int
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{data: map[string]string{}}
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	return s.data[key], nil
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// checkoutRouter nests the guarded route the same way the API router does, so
// the middleware sees the fully resolved pattern /api/v1/orders/checkout.
func checkoutRouter(store *stubIdempotencyStore, calls *int) http.Handler {
	logg := testLogger()
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.With(Idempotency(store, logg)).Post("/checkout", func(w http.ResponseWriter, req *http.Request) {
				*calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"success":true,"data":[{"id":"order-1"}]}`))
			})
			r.With(Idempotency(store, logg)).Post("/quote", func(w http.ResponseWriter, req *http.Request) {
				*calls++
				w.WriteHeader(http.StatusOK)
			})
		})
	})
	return r
}

func TestIdempotencyRequiresKeyOnCheckout(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := checkoutRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(`{"payment_method":"cash_on_delivery"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key, got %d", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("expected handler not to run, ran %d times", calls)
	}
	if store.gets != 0 || store.sets != 0 {
		t.Fatalf("expected store untouched, gets=%d sets=%d", store.gets, store.sets)
	}
}

func TestIdempotencyReplayReturnsStoredResponse(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := checkoutRouter(store, &calls)
	body := `{"payment_method":"cash_on_delivery"}`

	first := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "ord-abc-123")
	firstRec := httptest.NewRecorder()
	router.ServeHTTP(firstRec, first)

	if firstRec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first checkout, got %d", firstRec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if store.sets != 1 {
		t.Fatalf("expected one stored record, sets=%d", store.sets)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "ord-abc-123")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	if secondRec.Code != http.StatusCreated {
		t.Fatalf("expected replay to keep 201, got %d", secondRec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected replay to skip the handler, ran %d times", calls)
	}
	if firstRec.Body.String() != secondRec.Body.String() {
		t.Fatalf("expected replay body %q, got %q", firstRec.Body.String(), secondRec.Body.String())
	}
	if ct := secondRec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected stored content type on replay, got %q", ct)
	}
}

func TestIdempotencyKeyReuseWithDifferentBody(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := checkoutRouter(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(`{"payment_method":"cash_on_delivery"}`))
	first.Header.Set("Idempotency-Key", "ord-reuse")
	router.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(`{"payment_method":"upi"}`))
	second.Header.Set("Idempotency-Key", "ord-reuse")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, second)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with new body, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run only for the first request, ran %d times", calls)
	}
}

func TestIdempotencyIgnoresUnlistedRoutes(t *testing.T) {
	store := newStubIdempotencyStore()
	calls := 0
	router := checkoutRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/quote", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected unlisted route to pass through, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run, ran %d times", calls)
	}
	if store.gets != 0 || store.sets != 0 {
		t.Fatalf("expected store untouched for unlisted route, gets=%d sets=%d", store.gets, store.sets)
	}
}
