package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"TASKTRACKER_BACK-END/internal/apperrors"
	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/models"
	"TASKTRACKER_BACK-END/internal/store"
)

// editableUsers lets tests change or remove stored users behind the
// service's back, which no API operation does.
type editableUsers struct {
	*store.MemoryStore
	roles   map[uuid.UUID]models.Role
	deleted map[uuid.UUID]bool
}

func newEditableUsers() *editableUsers {
	return &editableUsers{
		MemoryStore: store.NewMemoryStore(),
		roles:       make(map[uuid.UUID]models.Role),
		deleted:     make(map[uuid.UUID]bool),
	}
}

func (e *editableUsers) SetUserRole(id uuid.UUID, role models.Role) { e.roles[id] = role }

func (e *editableUsers) DeleteUser(id uuid.UUID) { e.deleted[id] = true }

func (e *editableUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := e.MemoryStore.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.apply(u)
}

func (e *editableUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := e.MemoryStore.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return e.apply(u)
}

func (e *editableUsers) apply(u *models.User) (*models.User, error) {
	if e.deleted[u.ID] {
		return nil, store.ErrNotFound
	}
	if role, ok := e.roles[u.ID]; ok {
		u.Role = role
	}
	return u, nil
}

func newTestAuth(t *testing.T) (*AuthService, *editableUsers) {
	t.Helper()
	s := newEditableUsers()
	svc := NewAuthService(s, &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour})
	svc.hashCost = bcrypt.MinCost
	return svc, s
}

func mustRegister(t *testing.T, svc *AuthService, name, email, role string) *AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "password123", Role: role})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return res
}

func TestRegister(t *testing.T) {
	svc, _ := newTestAuth(t)

	res := mustRegister(t, svc, " Alice ", " Alice@Example.COM ", "")
	if res.Token == "" {
		t.Error("expected a token")
	}
	if res.User.Name != "Alice" || res.User.Email != "alice@example.com" {
		t.Errorf("user = %+v, want normalised name and email", res.User)
	}
	if res.User.Role != models.RoleUser {
		t.Errorf("Role = %q, want user by default", res.User.Role)
	}
	if res.User.PasswordHash == "password123" || res.User.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegisterAcceptsRequestedAdminRole(t *testing.T) {
	svc, _ := newTestAuth(t)

	res := mustRegister(t, svc, "Root", "root@example.com", "admin")
	if res.User.Role != models.RoleAdmin {
		t.Errorf("Role = %q, want admin", res.User.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuth(t)
	mustRegister(t, svc, "Alice", "alice@example.com", "")

	tests := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing name", RegisterInput{Email: "b@example.com", Password: "pw"}, "required"},
		{"missing email", RegisterInput{Name: "B", Password: "pw"}, "required"},
		{"missing password", RegisterInput{Name: "B", Email: "b@example.com"}, "required"},
		{"bad email", RegisterInput{Name: "B", Email: "bob", Password: "pw"}, "invalid"},
		{"unknown role", RegisterInput{Name: "B", Email: "b@example.com", Password: "pw", Role: "superuser"}, "Role"},
		{"duplicate email other case", RegisterInput{Name: "A2", Email: "ALICE@example.com", Password: "pw"}, "already exists"},
		{"password too long", RegisterInput{Name: "B", Email: "b@example.com", Password: strings.Repeat("x", 73)}, "72"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			if !apperrors.Is(err, apperrors.KindValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestAuth(t)
	registered := mustRegister(t, svc, "Alice", "alice@example.com", "")

	res, err := svc.Authenticate(context.Background(), "ALICE@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.User.ID != registered.User.ID || res.Token == "" {
		t.Errorf("Authenticate returned %+v", res)
	}

	_, wrongPassword := svc.Authenticate(context.Background(), "alice@example.com", "nope")
	_, unknownEmail := svc.Authenticate(context.Background(), "nobody@example.com", "password123")
	for _, err := range []error{wrongPassword, unknownEmail} {
		if !apperrors.Is(err, apperrors.KindAuth) {
			t.Errorf("err = %v, want auth error", err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("wrong password (%q) and unknown email (%q) must be indistinguishable", wrongPassword, unknownEmail)
	}

	if _, err := svc.Authenticate(context.Background(), "", ""); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("empty credentials: err = %v, want validation error", err)
	}
}

func TestVerifyToken(t *testing.T) {
	svc, s := newTestAuth(t)
	res := mustRegister(t, svc, "Alice", "alice@example.com", "")

	p, err := svc.VerifyToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if p.UserID != res.User.ID || p.Role != models.RoleUser || p.Email != "alice@example.com" {
		t.Errorf("principal = %+v", p)
	}

	// Role is read from the store, not from the token
	s.SetUserRole(res.User.ID, models.RoleAdmin)
	p, err = svc.VerifyToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("VerifyToken after role change: %v", err)
	}
	if !p.IsAdmin() {
		t.Errorf("Role = %q, want fresh admin role", p.Role)
	}

	s.DeleteUser(res.User.ID)
	if _, err := svc.VerifyToken(context.Background(), res.Token); !apperrors.Is(err, apperrors.KindAuth) {
		t.Errorf("deleted user: err = %v, want auth error", err)
	}
}

func TestVerifyTokenRejectsBadTokens(t *testing.T) {
	svc, s := newTestAuth(t)
	res := mustRegister(t, svc, "Alice", "alice@example.com", "")

	expiring := NewAuthService(s, &config.JWTConfig{Secret: "test-secret", AccessTokenTTL: -time.Minute})
	expired, err := expiring.issue(res.User)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	foreign := NewAuthService(s, &config.JWTConfig{Secret: "other-secret", AccessTokenTTL: time.Hour})
	forged, err := foreign.issue(res.User)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name  string
		token string
		msg   string
	}{
		{"missing", "", "required"},
		{"malformed", "abc.def", "Invalid token"},
		{"expired", expired.Token, "expired"},
		{"wrong signature", forged.Token, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyToken(context.Background(), tt.token)
			if !apperrors.Is(err, apperrors.KindAuth) {
				t.Fatalf("err = %v, want auth error", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.msg)
			}
		})
	}
}

func TestSignInWithGoogle(t *testing.T) {
	svc, _ := newTestAuth(t)
	existing := mustRegister(t, svc, "Alice", "alice@example.com", "admin")

	res, err := svc.SignInWithGoogle(context.Background(), "Alice@Example.com", "Alice G")
	if err != nil {
		t.Fatalf("SignInWithGoogle existing: %v", err)
	}
	if res.User.ID != existing.User.ID || res.User.Role != models.RoleAdmin {
		t.Errorf("existing account not reused: %+v", res.User)
	}

	res, err = svc.SignInWithGoogle(context.Background(), "new@example.com", "")
	if err != nil {
		t.Fatalf("SignInWithGoogle new: %v", err)
	}
	if res.User.Role != models.RoleUser || res.User.Name != "new@example.com" || res.User.PasswordHash != "" {
		t.Errorf("new google user = %+v", res.User)
	}

	// Google-only accounts cannot use password sign-in
	if _, err := svc.Authenticate(context.Background(), "new@example.com", ""); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("empty password: err = %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "new@example.com", "anything"); !apperrors.Is(err, apperrors.KindAuth) {
		t.Errorf("google-only account: err = %v, want auth error", err)
	}
}

func TestProfile(t *testing.T) {
	svc, s := newTestAuth(t)
	res := mustRegister(t, svc, "Alice", "alice@example.com", "")
	p := models.PrincipalFor(res.User)

	u, err := svc.Profile(context.Background(), p)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q", u.Email)
	}

	s.DeleteUser(res.User.ID)
	if _, err := svc.Profile(context.Background(), p); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
