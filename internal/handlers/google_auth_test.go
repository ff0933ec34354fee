package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/dto"
	"TASKTRACKER_BACK-END/internal/services"
	"TASKTRACKER_BACK-END/internal/store"
)

func newTestGoogleHandler(t *testing.T, info *dto.GoogleUserInfo) (*GoogleAuthHandler, *services.AuthService) {
	t.Helper()
	auth := services.NewAuthService(store.NewMemoryStore(), &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})
	h := NewGoogleAuthHandler(auth, config.GoogleOAuthConfig{
		ClientID:            "client-id",
		ClientSecret:        "client-secret",
		RedirectURL:         "http://localhost:8080/api/auth/google/callback",
		FrontendCallbackURL: "http://localhost:3000/auth/callback",
	})
	h.exchange = func(_ context.Context, code string) (*oauth2.Token, error) {
		if code != "good-code" {
			return nil, errors.New("bad code")
		}
		return &oauth2.Token{AccessToken: "access"}, nil
	}
	h.getUserInfo = func(context.Context, *oauth2.Token) (*dto.GoogleUserInfo, error) {
		return info, nil
	}
	return h, auth
}

func TestGoogleLogin(t *testing.T) {
	h, _ := newTestGoogleHandler(t, nil)

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "client_id=client-id") {
		t.Errorf("auth url missing client id: %s", rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != oauthStateCookie || cookies[0].Value == "" {
		t.Errorf("state cookie = %+v", cookies)
	}
}

func TestGoogleCallback(t *testing.T) {
	verified := &dto.GoogleUserInfo{Email: "Gina@Example.com", Name: "Gina", Verified: true}

	tests := []struct {
		name   string
		info   *dto.GoogleUserInfo
		query  string
		cookie string
		want   int
	}{
		{"missing code", verified, "", "", http.StatusBadRequest},
		{"state mismatch", verified, "code=good-code&state=abc", "xyz", http.StatusBadRequest},
		{"missing state cookie", verified, "code=good-code&state=abc", "", http.StatusBadRequest},
		{"missing state param", verified, "code=good-code", "abc", http.StatusBadRequest},
		{"exchange fails", verified, "code=bad-code&state=abc", "abc", http.StatusUnauthorized},
		{"unverified email", &dto.GoogleUserInfo{Email: "x@example.com", Verified: false}, "code=good-code&state=abc", "abc", http.StatusUnauthorized},
		{"success", verified, "code=good-code&state=abc", "abc", http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, auth := newTestGoogleHandler(t, tt.info)
			req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.GoogleCallback(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusFound {
				return
			}

			loc, err := url.Parse(rec.Header().Get("Location"))
			if err != nil {
				t.Fatalf("parse location: %v", err)
			}
			if !strings.HasPrefix(loc.String(), "http://localhost:3000/auth/callback?") {
				t.Errorf("redirect = %s", loc)
			}
			q := loc.Query()
			if q.Get("email") != "gina@example.com" || q.Get("provider") != "google" {
				t.Errorf("redirect query = %v", q)
			}
			p, err := auth.VerifyToken(context.Background(), q.Get("token"))
			if err != nil {
				t.Fatalf("issued token does not verify: %v", err)
			}
			if p.UserID.String() != q.Get("user_id") || p.Name != "Gina" {
				t.Errorf("principal = %+v", p)
			}
		})
	}
}
