package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/models"
)

// ErrUnauthorized is returned for missing, invalid, or expired credentials.
var ErrUnauthorized = fmt.Errorf("auth: unauthorized")

type ctxKey string

const adminKey ctxKey = "admin"

// HashPassword produces a bcrypt hash suitable for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Manager issues and verifies the signed tokens that gate every privileged
// catalog mutation.
type Manager struct {
	db       *database.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewManager creates a token manager backed by the admin table.
func NewManager(db *database.DB, secret string, tokenTTL time.Duration) *Manager {
	return &Manager{
		db:       db,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Login verifies a username/password pair and returns a signed token.
func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := m.db.GetAdminByUsername(ctx, username)
	if err != nil {
		// Same failure for unknown user and wrong password.
		return "", ErrUnauthorized
	}
	if !CheckPassword(password, admin.PasswordHash) {
		return "", ErrUnauthorized
	}

	return m.IssueToken(admin.ID)
}

// CreateAdmin stores a new admin account with a hashed password.
func (m *Manager) CreateAdmin(ctx context.Context, id, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return m.db.CreateAdmin(ctx, models.AdminUser{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
}

// HasAdmins reports whether any admin account exists.
func (m *Manager) HasAdmins(ctx context.Context) (bool, error) {
	n, err := m.db.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IssueToken signs an HS256 token for the given admin id.
func (m *Manager) IssueToken(adminID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   adminID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Authenticate verifies a bearer token and resolves the admin it belongs to.
func (m *Manager) Authenticate(ctx context.Context, tokenString string) (*models.AdminUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	admin, err := m.db.GetAdminByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUnauthorized
	}

	return admin, nil
}

// RequireAdmin is the middleware wrapping every privileged route. Requests
// without a valid bearer token are rejected before any handler runs.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w)
			return
		}

		admin, err := m.Authenticate(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
	})
}

// WithAdmin returns a context carrying the authenticated admin.
func WithAdmin(ctx context.Context, admin *models.AdminUser) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// AdminFromContext extracts the authenticated admin, if any.
func AdminFromContext(ctx context.Context) (*models.AdminUser, bool) {
	admin, ok := ctx.Value(adminKey).(*models.AdminUser)
	return admin, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}
