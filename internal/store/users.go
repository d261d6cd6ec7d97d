package store

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user not found")

// User is the persisted account row. PasswordHash is nil for oauth accounts.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `json:"name"`
	Email        string  `gorm:"uniqueIndex" json:"email"`
	PasswordHash *string `json:"-"`
	Provider     string  `json:"provider"`
	Rating       int     `json:"rating"`
}

// UserStore is the Postgres-backed account table. Only the surrounding auth
// layer touches it; nothing in the session core persists anything.
type UserStore struct {
	db *gorm.DB
}

func Open(dsn string) (*UserStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, err
	}
	return &UserStore{db: db}, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Create(u).Error
}
