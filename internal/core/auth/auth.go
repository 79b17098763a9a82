// Package auth implements the credential verification collaborator.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/kisaten/bancho/internal/core/data"
)

var (
	ErrUnknown            = errors.New("an unexpected error occurred, please contact your server administrator")
	ErrInvalidCredentials = errors.New("username/password combination not found")
	ErrAccountBanned      = errors.New("this account has been suspended")
)

const (
	accountCacheTTL     = 30 * time.Second
	accountCacheCleanup = 5 * time.Minute
)

// Service verifies login credentials against the account table. Lookups are
// fronted by a short-TTL cache since clients retry logins aggressively.
type Service struct {
	db    *gorm.DB
	cache *gocache.Cache
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:    db,
		cache: gocache.New(accountCacheTTL, accountCacheCleanup),
	}
}

// VerifyAccount checks the credentials combination and validates that the
// account is accessible.
func (s *Service) VerifyAccount(username, password string) (*data.Account, error) {
	account, err := s.findAccount(username)
	if err != nil {
		return nil, ErrUnknown
	}

	if account == nil || account.Password != HashPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if account.Banned {
		return nil, ErrAccountBanned
	}
	return account, nil
}

// CreateAccount registers a new account with the given credentials.
func (s *Service) CreateAccount(username, password, email string) (*data.Account, error) {
	account := &data.Account{
		Username:         username,
		Password:         HashPassword(password),
		Email:            email,
		RegistrationDate: time.Now(),
		Active:           true,
	}
	if err := data.CreateAccount(s.db, account); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	s.cache.Set(username, account, gocache.DefaultExpiration)
	return account, nil
}

func (s *Service) findAccount(username string) (*data.Account, error) {
	if cached, ok := s.cache.Get(username); ok {
		return cached.(*data.Account), nil
	}
	account, err := data.FindAccountByUsername(s.db, username)
	if err != nil {
		return nil, err
	}
	if account != nil {
		s.cache.Set(username, account, gocache.DefaultExpiration)
	}
	return account, nil
}

// HashPassword returns password hashed with the server's chosen strategy.
func HashPassword(password string) string {
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}
