package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"TASKTRACKER_BACK-END/internal/apperrors"
	"TASKTRACKER_BACK-END/internal/config"
	"TASKTRACKER_BACK-END/internal/middleware"
	"TASKTRACKER_BACK-END/internal/models"
	"TASKTRACKER_BACK-END/internal/store"
)

const invalidCredentials = "Invalid credentials"

// RegisterInput is the sign-up payload
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// Role is taken as requested by the caller; empty means user
	Role string
}

// AuthResult is a signed-in user and their bearer token
type AuthResult struct {
	User  *models.User
	Token string
}

// AuthService registers users, checks credentials and verifies tokens
type AuthService struct {
	users    store.UserStore
	jwt      *config.JWTConfig
	hashCost int
	now      func() time.Time
}

// NewAuthService creates a new AuthService instance
func NewAuthService(users store.UserStore, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		users:    users,
		jwt:      jwtCfg,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register creates a user with a hashed password and signs them in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperrors.Validation("Name, email, and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.Validation("Email is invalid")
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(in.Role)))
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation("Role must be user or admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.Validation("Password must be at most 72 bytes")
		}
		return nil, apperrors.Store("Failed to hash password", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperrors.Validation("User already exists")
		}
		return nil, apperrors.Store("Failed to create user", err)
	}

	return s.issue(user)
}

// Authenticate checks email and password and signs the user in. Unknown
// email and wrong password produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.Auth(invalidCredentials)
		}
		return nil, apperrors.Store("Failed to load user", err)
	}

	// Accounts created through Google sign-in have no password
	if user.PasswordHash == "" {
		return nil, apperrors.Auth(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Auth(invalidCredentials)
	}

	return s.issue(user)
}

// VerifyToken validates token and resolves the principal from the current
// user record, so role changes apply to existing tokens immediately.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (models.Principal, error) {
	if token == "" {
		return models.Principal{}, apperrors.Auth("Authorization token required")
	}

	claims, err := middleware.ValidateToken(token, s.jwt)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, apperrors.Auth("Token has expired")
		}
		return models.Principal{}, apperrors.Auth("Invalid token")
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Principal{}, apperrors.Auth("User no longer exists")
		}
		return models.Principal{}, apperrors.Store("Failed to load user", err)
	}

	return models.PrincipalFor(user), nil
}

// SignInWithGoogle finds the user with a verified Google email or creates
// one with the user role and no password
func (s *AuthService) SignInWithGoogle(ctx context.Context, email, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.Validation("Google account has no email")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.Store("Failed to load user", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}
	now := s.now().UTC()
	user = &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperrors.Store("Failed to create user", err)
		}
		// A concurrent sign-in created the account first
		if user, err = s.users.GetUserByEmail(ctx, email); err != nil {
			return nil, apperrors.Store("Failed to load user", err)
		}
	}

	return s.issue(user)
}

// Profile returns the stored record of the principal
func (s *AuthService) Profile(ctx context.Context, p models.Principal) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Store("Failed to load user", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := middleware.GenerateToken(user.ID, user.Email, s.jwt)
	if err != nil {
		return nil, apperrors.Store("Failed to generate token", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
