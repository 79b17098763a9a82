package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Account contains the login information for each registered user.
type Account struct {
	ID               uint64 `gorm:"primaryKey"`
	Username         string `gorm:"unique; not null"`
	Password         string `gorm:"not null"`
	Email            string `gorm:"unique"`
	RegistrationDate time.Time
	Banned           bool `gorm:"default:false"`
	Active           bool `gorm:"default:true"`
}

// FindAccountByUsername searches for an account with the specified username,
// returning the *Account instance if found or nil if there is no match.
func FindAccountByUsername(db *gorm.DB, username string) (*Account, error) {
	var account Account
	err := db.Where("username = ?", username).First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount persists the account.
func CreateAccount(db *gorm.DB, account *Account) error {
	return db.Create(account).Error
}
