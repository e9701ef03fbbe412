package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/expensehub/internal/auth"
	"github.com/geocoder89/expensehub/internal/db"
	apphttp "github.com/geocoder89/expensehub/internal/http"
	"github.com/geocoder89/expensehub/internal/http/middlewares"
	"github.com/geocoder89/expensehub/internal/service"
	"github.com/gin-gonic/gin"
)

type sessionResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type expenseResponse struct {
	ID       string  `json:"id"`
	UserID   string  `json:"userId"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Note     string  `json:"note"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId"`
}

type routerOptions struct {
	verifier service.IdentityVerifier
	limiter  middlewares.Limiter
}

func setupRouter(t *testing.T, store *db.Store, opts routerOptions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tokens := auth.NewManager("test-secret-key", time.Hour)

	return apphttp.NewRouter(apphttp.Deps{
		Log:          logger,
		Env:          "test",
		Auth:         service.NewAuthService(store.Users, tokens, opts.verifier, logger),
		Ledger:       service.NewLedgerService(store.Expenses),
		Tokens:       tokens,
		Ping:         store.Ping,
		AuthLimiter:  opts.limiter,
		CORSOrigins:  []string{"*"},
		MaxBodyBytes: 1 << 20,
	})
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d want %d, body=%s", w.Code, want, w.Body.String())
	}
}

func register(t *testing.T, r http.Handler, email, password string) sessionResponse {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/auth/register", `{"email":"`+email+`","password":"`+password+`"}`, "")
	mustStatus(t, w, http.StatusCreated)

	var sess sessionResponse
	mustReadJSON(t, w, &sess)
	return sess
}

func doRequestWithHeader(router http.Handler, path, token, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(key, value)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newRawRequest(method, path, body, contentType, token string) func(http.Handler) *httptest.ResponseRecorder {
	return func(router http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
}
