package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/boardroom/internal/game"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokenRoundTrip(t *testing.T) {
	s := New("key", time.Hour)
	now := time.Now()
	token := s.IssueToken("player-1", now)

	subject, err := s.VerifyToken(token, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "player-1", subject)
}

func TestTokenExpiry(t *testing.T) {
	s := New("key", time.Hour)
	now := time.Now()
	token := s.IssueToken("player-1", now)

	_, err := s.VerifyToken(token, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, game.ErrUnauthorized)
}

func TestTokenTamperingRejected(t *testing.T) {
	s := New("key", time.Hour)
	other := New("other-key", time.Hour)
	now := time.Now()

	_, err := s.VerifyToken(other.IssueToken("player-1", now), now)
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	_, err = s.VerifyToken("garbage", now)
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	token := s.IssueToken("player-1", now)
	_, err = s.VerifyToken("x"+token, now)
	assert.ErrorIs(t, err, game.ErrUnauthorized)
}

func TestSubjectMayContainDots(t *testing.T) {
	s := New("key", time.Hour)
	now := time.Now()
	subject := "user.with.dots"
	got, err := s.VerifyToken(s.IssueToken(subject, now), now)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}
