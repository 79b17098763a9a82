package auth

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/kisaten/bancho/internal/core/data"
)

func setUpService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}
	if err = db.AutoMigrate(&data.Account{}); err != nil {
		t.Fatalf("error auto migrating db: %s", err)
	}
	return NewService(db)
}

func TestCreateAccount(t *testing.T) {
	service := setUpService(t)

	account, err := service.CreateAccount("alice", "letmein", "alice@example.com")
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if account.Username != "alice" {
		t.Errorf("username = %q, want alice", account.Username)
	}
	if account.Password == "letmein" {
		t.Error("password stored in the clear")
	}
	if account.Password != HashPassword("letmein") {
		t.Error("stored password does not match the hash of the input")
	}
	if !account.Active {
		t.Error("new account not active")
	}

	if _, err := service.CreateAccount("alice", "other", "other@example.com"); err == nil {
		t.Error("CreateAccount() error = nil for duplicate username")
	}
}

func TestVerifyAccount(t *testing.T) {
	service := setUpService(t)
	if _, err := service.CreateAccount("alice", "letmein", "alice@example.com"); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid credentials", username: "alice", password: "letmein"},
		{name: "wrong password", username: "alice", password: "wrong", wantErr: ErrInvalidCredentials},
		{name: "unknown username", username: "bob", password: "letmein", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := service.VerifyAccount(tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("VerifyAccount() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && account.Username != tt.username {
				t.Errorf("account username = %q, want %q", account.Username, tt.username)
			}
		})
	}
}

func TestVerifyAccountBanned(t *testing.T) {
	service := setUpService(t)
	if _, err := service.CreateAccount("badguy", "letmein", "bad@example.com"); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if err := service.db.Model(&data.Account{}).Where("username = ?", "badguy").Update("banned", true).Error; err != nil {
		t.Fatalf("error banning account: %v", err)
	}
	// The create above primed the cache with the unbanned copy; evict it so
	// the lookup sees the database row.
	service.cache.Delete("badguy")

	if _, err := service.VerifyAccount("badguy", "letmein"); !errors.Is(err, ErrAccountBanned) {
		t.Errorf("VerifyAccount() error = %v, want %v", err, ErrAccountBanned)
	}
}

func TestHashPasswordDeterministic(t *testing.T) {
	hashed := HashPassword("password")
	if hashed == "password" {
		t.Fatal("hash equals input")
	}
	for i := 0; i < 10; i++ {
		if h := HashPassword("password"); h != hashed {
			t.Fatalf("password hashing is non-deterministic (expected %s, got %s)", hashed, h)
		}
	}
}
