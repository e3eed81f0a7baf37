package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/promo"
	"go-chi-calculator/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *calculator.HistoryLog) {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	registry, err := calculator.NewRegistry(calculator.DefaultPolicy())
	if err != nil {
		t.Fatalf("creating registry: %v", err)
	}
	store, err := session.NewCookieStore(session.StoreConfig{TTL: time.Hour})
	if err != nil {
		t.Fatalf("creating session store: %v", err)
	}

	history := calculator.NewHistoryLog()
	svc := calculator.NewService(registry, history, promo.NewGenerator(nil, nil), nil)

	return NewRouter(Deps{
		Calculator: calculator.NewHandler(svc, store, 10),
		Health: handlers.HealthInfo{
			Service:             "calculator-api",
			Version:             "test",
			OperationsSupported: len(calculator.Catalog()),
			HistoryEntries:      history.Size,
		},
	}), history
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router, history := newTestRouter(t)
	history.Append(calculator.NewRecord(2, nil, calculator.OpSquare, 4, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var body handlers.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if body.Status != "healthy" {
		t.Fatalf("expected status %q, got %q", "healthy", body.Status)
	}
	if body.OperationsSupported != 9 {
		t.Fatalf("expected 9 operations, got %d", body.OperationsSupported)
	}
	if body.HistoryEntries != 1 {
		t.Fatalf("expected 1 history entry, got %d", body.HistoryEntries)
	}
}

func TestNewRouterCalculateSetsHeadersAndOmitsRequestIDInBody(t *testing.T) {
	router, _ := newTestRouter(t)

	body := []byte(`{"a":2,"b":3,"operation":"add"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["result"].(float64); !ok || got != 5 {
		t.Fatalf("expected result 5, got %#v", payload["result"])
	}
}

func TestNewRouterSessionCarriesUnlockAcrossRequests(t *testing.T) {
	router, _ := newTestRouter(t)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/calculate?a=1&b=2&operation=add", nil)
	router.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/calculate?a=1&b=2&operation=add", nil)
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}
	router.ServeHTTP(second, req)

	var payload map[string]any
	if err := json.NewDecoder(second.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if payload["show_pro_modal"] != false || payload["pro_activated"] != true {
		t.Fatalf("expected returning client to be unlocked without promo, got %#v", payload)
	}

	// A client without the cookie is fresh again.
	third := httptest.NewRecorder()
	router.ServeHTTP(third, httptest.NewRequest(http.MethodGet, "/api/calculate?a=1&b=2&operation=add", nil))

	payload = nil
	if err := json.NewDecoder(third.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if payload["show_pro_modal"] != true {
		t.Fatalf("expected new client to see the promo, got %#v", payload["show_pro_modal"])
	}
}

func TestNewRouterMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/calculate", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}
