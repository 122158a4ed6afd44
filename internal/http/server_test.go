package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"cinetrack/internal/service"
)

type testServer struct {
	router   *gin.Engine
	tokens   *service.TokenService
	accounts *mockAccountRepo
	catalog  *mockCatalog
	quotes   *mockQuoteRepo
	sender   *mockEmailSender
}

func newTestServer(t *testing.T, authLimiter service.RateLimiter) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	accounts := newMockAccountRepo()
	catalog := newMockCatalog()
	quotes := &mockQuoteRepo{}
	sender := &mockEmailSender{}

	hasher := service.NewBcryptHasher(bcrypt.MinCost, 4)
	tokens, err := service.NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	resetCodes := service.NewResetCodeService(accounts, hasher, 15*time.Minute)
	accountSvc := service.NewAccountService(logger, accounts, catalog, hasher, tokens, resetCodes, sender, service.AccountSettings{
		DefaultAvatarURL: "https://i.imgur.com/9NYgErP.png",
		ResetTokenTTL:    15 * time.Minute,
	})
	movieSvc := service.NewMovieService(logger, catalog)
	librarySvc := service.NewLibraryService(logger, accounts, catalog, catalog, movieSvc)
	quoteSvc := service.NewQuoteService(logger, quotes)

	router := NewRouter(logger, tokens, RouterOptions{
		AuthLimiter: authLimiter,
		Metrics:     NewMetrics(),
	},
		NewAccountHandler(logger, accountSvc),
		NewLibraryHandler(logger, librarySvc),
		NewMovieHandler(logger, movieSvc, quoteSvc),
	)
	return testServer{
		router:   router,
		tokens:   tokens,
		accounts: accounts,
		catalog:  catalog,
		quotes:   quotes,
		sender:   sender,
	}
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Body.String() != want {
		t.Fatalf("expected body %q, got %q", want, rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	expectStatus(t, rec, http.StatusOK)

	s.do(t, http.MethodGet, "/api/movies", "", nil)
	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`http_requests_total{method="GET",path="/api/movies",status="200"}`)) {
		t.Fatalf("expected request counter for /api/movies, got:\n%s", rec.Body.String())
	}
}
