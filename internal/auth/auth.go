// Package auth issues and verifies the platform's bearer credentials:
// bcrypt password hashes for accounts and HMAC-signed tokens for requests.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hailam/boardroom/internal/game"
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Service signs tokens with a process-wide secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// HashPassword returns the bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a bearer token for the subject, valid for the
// configured lifetime. Format: base64(subject|expiry) "." base64(hmac).
func (s *Service) IssueToken(subject string, now time.Time) string {
	payload := subject + "|" + strconv.FormatInt(now.Add(s.ttl).Unix(), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + s.sign(payload)
}

// VerifyToken checks signature and expiry and returns the subject.
// Failures map to the unauthorized taxonomy entry.
func (s *Service) VerifyToken(token string, now time.Time) (string, error) {
	dot := strings.LastIndexByte(token, '.')
	if dot < 0 {
		return "", fmt.Errorf("%w: malformed token", game.ErrUnauthorized)
	}
	raw, err := base64.RawURLEncoding.DecodeString(token[:dot])
	if err != nil {
		return "", fmt.Errorf("%w: malformed token", game.ErrUnauthorized)
	}
	payload := string(raw)
	if !hmac.Equal([]byte(s.sign(payload)), []byte(token[dot+1:])) {
		return "", fmt.Errorf("%w: bad token signature", game.ErrUnauthorized)
	}

	sep := strings.LastIndexByte(payload, '|')
	if sep < 0 {
		return "", fmt.Errorf("%w: malformed token", game.ErrUnauthorized)
	}
	exp, err := strconv.ParseInt(payload[sep+1:], 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: malformed token", game.ErrUnauthorized)
	}
	if now.Unix() >= exp {
		return "", fmt.Errorf("%w: token expired", game.ErrUnauthorized)
	}
	return payload[:sep], nil
}

func (s *Service) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
