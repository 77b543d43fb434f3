package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	s := New(nil, Config{JWTSecret: []byte("test-secret"), TokenTTL: time.Hour})

	token, err := s.IssueToken(42, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := New(nil, Config{JWTSecret: []byte("secret-a"), TokenTTL: time.Hour})
	verifier := New(nil, Config{JWTSecret: []byte("secret-b"), TokenTTL: time.Hour})

	token, err := issuer.IssueToken(1, "a@b.c")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	s := New(nil, Config{JWTSecret: []byte("test-secret")})

	_, err := s.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	s := New(nil, Config{JWTSecret: []byte("test-secret"), TokenTTL: -time.Minute})

	token, err := s.IssueToken(7, "late@example.com")
	require.NoError(t, err)

	_, err = s.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
