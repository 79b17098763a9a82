package data

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"
)

// Creates a fresh sqlite database for each test. The schema is small and the
// test count low, so a new file per invocation is cheap.
func setUpDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}
	if err = db.AutoMigrate(&Account{}); err != nil {
		t.Fatalf("error auto migrating db: %s", err)
	}
	return db
}

func TestFindAccountByUsername(t *testing.T) {
	db := setUpDatabase(t)

	seeded := &Account{
		Username:         "alice",
		Password:         "hashed",
		Email:            "alice@example.com",
		RegistrationDate: time.Now().UTC().Truncate(time.Second),
		Active:           true,
	}
	if err := CreateAccount(db, seeded); err != nil {
		t.Fatalf("error seeding test account: %v", err)
	}

	tests := []struct {
		name     string
		username string
		want     *Account
	}{
		{name: "account exists", username: "alice", want: seeded},
		{name: "account does not exist", username: "nobody", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindAccountByUsername(db, tt.username)
			if err != nil {
				t.Fatalf("FindAccountByUsername() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("account mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCreateAccountRejectsDuplicateUsername(t *testing.T) {
	db := setUpDatabase(t)

	if err := CreateAccount(db, &Account{Username: "alice", Password: "x", Email: "a@b.c"}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if err := CreateAccount(db, &Account{Username: "alice", Password: "y", Email: "c@d.e"}); err == nil {
		t.Error("CreateAccount() error = nil for duplicate username")
	}
}
