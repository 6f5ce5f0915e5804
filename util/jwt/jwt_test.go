package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestIssueParseAuthRoundTrip(t *testing.T) {
	tok, err := Issue(secret, 42, "OWNER", 1)
	require.NoError(t, err)

	claims, err := ParseAuth("Bearer "+tok, secret)
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "OWNER", claims["role"])

	// A bare token without the Bearer prefix is accepted too.
	claims, err = ParseAuth(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["sub"])
}

func TestParseAuth_RejectsWrongSecret(t *testing.T) {
	tok, err := Issue(secret, 42, "USER", 1)
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, "other-secret")
	assert.Error(t, err)
}

func TestParseAuth_RejectsMissingToken(t *testing.T) {
	_, err := ParseAuth("", secret)
	assert.Error(t, err)

	_, err = ParseAuth("Bearer ", secret)
	assert.Error(t, err)
}

func TestParseAuth_RejectsExpiredToken(t *testing.T) {
	claims := jwtlib.MapClaims{
		"sub": int64(42),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, secret)
	assert.Error(t, err)
}

func TestParseAuth_RejectsNonHS256(t *testing.T) {
	claims := jwtlib.MapClaims{
		"sub": int64(42),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS384, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseAuth("Bearer "+tok, secret)
	assert.Error(t, err, "only HS256 is accepted")
}
