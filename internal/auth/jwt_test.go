package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateJWT("s3cret", "admin", time.Hour)
	require.NoError(t, err)

	subject, err := ValidateJWT("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestValidateRejects(t *testing.T) {
	valid, err := GenerateJWT("s3cret", "admin", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWT("s3cret", "admin", -time.Minute)
	require.NoError(t, err)
	noSubject, err := GenerateJWT("s3cret", "", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]struct{ secret, token string }{
		"wrong secret": {"other", valid},
		"expired":      {"s3cret", expired},
		"no subject":   {"s3cret", noSubject},
		"unsigned":     {"s3cret", none},
		"garbage":      {"s3cret", "not.a.jwt"},
		"empty":        {"s3cret", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateJWT(tt.secret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := GenerateJWT("", "admin", time.Hour)
	assert.Error(t, err)
}
