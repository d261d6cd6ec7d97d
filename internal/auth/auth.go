package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/codeclash/battle-backend/internal/store"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
	bcryptCost = 10
)

// Users is the slice of the account store the auth layer needs. Tests swap
// in an in-memory fake.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*store.User, error)
	Create(ctx context.Context, u *store.User) error
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service issues and verifies credentials: bcrypt password accounts, google
// upserts, and short-lived access / long-lived refresh HS256 tokens.
type Service struct {
	users         Users
	accessSecret  []byte
	refreshSecret []byte
	log           *zap.Logger
}

func NewService(users Users, accessSecret, refreshSecret string, log *zap.Logger) *Service {
	return &Service{
		users:         users,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		log:           log,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*store.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	h := string(hash)
	u := &store.User{Name: name, Email: email, PasswordHash: &h, Provider: "credentials"}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("email", email))
	return u, nil
}

// Login deliberately reports the same error for an unknown email and a wrong
// password.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, TokenPair{}, err
	}
	if u.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(u.Email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// GoogleUpsert stores a passwordless account on first sight and is a no-op
// for a returning user.
func (s *Service) GoogleUpsert(ctx context.Context, name, email string) (*store.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	u = &store.User{Name: name, Email: email, Provider: "google"}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Refresh trades a valid refresh token for a fresh access token.
func (s *Service) Refresh(refreshToken string) (string, error) {
	sub, err := verify(refreshToken, s.refreshSecret)
	if err != nil {
		return "", err
	}
	return sign(sub, s.accessSecret, accessTTL)
}

// VerifyAccess validates a handshake credential and returns the subject it
// was issued to.
func (s *Service) VerifyAccess(token string) (string, error) {
	return verify(token, s.accessSecret)
}

func (s *Service) issuePair(sub string) (TokenPair, error) {
	access, err := sign(sub, s.accessSecret, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := sign(sub, s.refreshSecret, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func sign(sub string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(token string, secret []byte) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
