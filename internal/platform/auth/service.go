// Package auth guards the API with the owner's passcode. There is a single
// user: a bcrypt hash of the passcode lives in the config file and a
// successful login yields a short-lived HS256 token.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"care-attendance/internal/platform/ids"
)

// Subject is the token subject of the only user.
const Subject = "owner"

const defaultTokenTTL = 24 * time.Hour

var ErrBadPasscode = errors.New("auth: passcode does not match")

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Service struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	clock  ids.Clock
}

func NewService(passcodeHash, secret string, ttl time.Duration, clock ids.Clock) (*Service, error) {
	if passcodeHash == "" {
		return nil, errors.New("auth: passcode_hash is empty")
	}
	if _, err := bcrypt.Cost([]byte(passcodeHash)); err != nil {
		return nil, errors.New("auth: passcode_hash is not a bcrypt hash")
	}
	if len(secret) < 16 {
		return nil, errors.New("auth: jwt_secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{hash: []byte(passcodeHash), secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

func (s *Service) Secret() []byte { return s.secret }

func (s *Service) Login(_ context.Context, passcode string) (Token, error) {
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(passcode)); err != nil {
		return Token{}, ErrBadPasscode
	}

	now := s.clock.Now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, ExpiresAt: exp.UTC()}, nil
}

// HashPasscode produces the value for auth.passcode_hash.
func HashPasscode(passcode string) (string, error) {
	if passcode == "" {
		return "", errors.New("auth: empty passcode")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
