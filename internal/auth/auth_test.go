package auth

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"offer-catalog-api/internal/database"
)

func setupTestManager(t *testing.T, ttl time.Duration) (*Manager, func()) {
	dbPath := "./test_auth_" + time.Now().Format("20060102150405.000000000") + ".db"
	db, err := database.NewDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	m := NewManager(db, "test-secret", ttl)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return m, cleanup
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hemligt123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == "hemligt123" {
		t.Fatal("Hash must not equal the plaintext password")
	}

	if !CheckPassword("hemligt123", hash) {
		t.Error("Expected correct password to verify")
	}
	if CheckPassword("fel-lösenord", hash) {
		t.Error("Expected wrong password to fail")
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	m, cleanup := setupTestManager(t, time.Hour)
	defer cleanup()

	ctx := context.Background()
	adminID := uuid.New().String()

	if err := m.CreateAdmin(ctx, adminID, "butikschef", "hemligt123"); err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}

	token, err := m.Login(ctx, "butikschef", "hemligt123")
	if err != nil {
		t.Fatalf("Failed to log in: %v", err)
	}

	admin, err := m.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}
	if admin.ID != adminID {
		t.Errorf("Expected admin %s, got %s", adminID, admin.ID)
	}
	if admin.Username != "butikschef" {
		t.Errorf("Expected username butikschef, got %q", admin.Username)
	}
}

func TestLogin_Failures(t *testing.T) {
	m, cleanup := setupTestManager(t, time.Hour)
	defer cleanup()

	ctx := context.Background()
	if err := m.CreateAdmin(ctx, uuid.New().String(), "butikschef", "hemligt123"); err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}

	// Unknown user and wrong password look identical to the caller.
	if _, err := m.Login(ctx, "okänd", "hemligt123"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for unknown user, got %v", err)
	}
	if _, err := m.Login(ctx, "butikschef", "fel-lösenord"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for wrong password, got %v", err)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	m, cleanup := setupTestManager(t, time.Hour)
	defer cleanup()

	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Authenticate(ctx, token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("%q: expected ErrUnauthorized, got %v", token, err)
		}
	}

	// A token signed with a different secret is rejected.
	other := NewManager(nil, "other-secret", time.Hour)
	token, err := other.IssueToken("some-admin")
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if _, err := m.Authenticate(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for foreign token, got %v", err)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	m, cleanup := setupTestManager(t, -time.Minute)
	defer cleanup()

	ctx := context.Background()
	adminID := uuid.New().String()
	if err := m.CreateAdmin(ctx, adminID, "butikschef", "hemligt123"); err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}

	token, err := m.IssueToken(adminID)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := m.Authenticate(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestHasAdmins(t *testing.T) {
	m, cleanup := setupTestManager(t, time.Hour)
	defer cleanup()

	ctx := context.Background()

	exists, err := m.HasAdmins(ctx)
	if err != nil {
		t.Fatalf("Failed to check for admins: %v", err)
	}
	if exists {
		t.Error("Expected no admins in a fresh database")
	}

	if err := m.CreateAdmin(ctx, uuid.New().String(), "butikschef", "hemligt123"); err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}

	exists, err = m.HasAdmins(ctx)
	if err != nil {
		t.Fatalf("Failed to check for admins: %v", err)
	}
	if !exists {
		t.Error("Expected admins after creation")
	}
}
