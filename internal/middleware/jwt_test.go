package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"TASKTRACKER_BACK-END/internal/apperrors"
	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/models"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour}
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := GenerateToken(userID, "alice@example.com", cfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token, cfg)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	expired, err := GenerateToken(userID, "a@example.com", &config.JWTConfig{Secret: cfg.Secret, AccessTokenTTL: -time.Minute})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	otherSecret, err := GenerateToken(userID, "a@example.com", &config.JWTConfig{Secret: "other", AccessTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{UserID: userID}).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"no expiry", noExpiry},
		{"alg none", none},
		{"garbage", "not-a-jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.token, cfg); err == nil {
				t.Errorf("ValidateToken accepted %s token", tt.name)
			}
		})
	}

	if _, err := ValidateToken(expired, cfg); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expired token error = %v, want ErrTokenExpired", err)
	}
}

type fakeVerifier struct {
	principal models.Principal
	err       error
	gotToken  string
}

func (f *fakeVerifier) VerifyToken(_ context.Context, token string) (models.Principal, error) {
	f.gotToken = token
	return f.principal, f.err
}

func TestAuthMiddleware(t *testing.T) {
	alice := models.Principal{UserID: uuid.New(), Name: "Alice", Role: models.RoleUser}

	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
	}{
		{"missing header", "", &fakeVerifier{principal: alice}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &fakeVerifier{principal: alice}, http.StatusUnauthorized},
		{"empty token", "Bearer ", &fakeVerifier{principal: alice}, http.StatusUnauthorized},
		{"rejected token", "Bearer bad", &fakeVerifier{err: apperrors.Auth("Invalid token")}, http.StatusUnauthorized},
		{"unclassified error", "Bearer bad", &fakeVerifier{err: errors.New("boom")}, http.StatusUnauthorized},
		{"store failure", "Bearer ok", &fakeVerifier{err: apperrors.Store("failed to load user", errors.New("down"))}, http.StatusInternalServerError},
		{"valid", "Bearer good-token", &fakeVerifier{principal: alice}, http.StatusOK},
		{"lowercase scheme", "bearer good-token", &fakeVerifier{principal: alice}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen models.Principal
			next := func(w http.ResponseWriter, r *http.Request) {
				p, ok := PrincipalFromContext(r.Context())
				if !ok {
					t.Error("principal missing from context")
				}
				seen = p
				w.WriteHeader(http.StatusOK)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			AuthMiddleware(tt.verifier)(next)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if seen.UserID != alice.UserID {
					t.Errorf("principal = %+v, want %+v", seen, alice)
				}
				if tt.verifier.gotToken != "good-token" {
					t.Errorf("verifier got token %q", tt.verifier.gotToken)
				}
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAccessLogPassesThrough(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
