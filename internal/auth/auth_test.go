package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestExtractBearer(t *testing.T) {
	tok, err := ExtractBearer("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	for _, h := range []string{"", "abc", "Basic abc", "Bearer ", "bearer abc"} {
		_, err := ExtractBearer(h)
		assert.ErrorIs(t, err, ErrMissingToken, h)
	}
}

func TestVerify(t *testing.T) {
	v := NewVerifier(secret)

	tok := sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{
		UserMetadata: UserMetadata{Email: "alice@example.com"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "user-1", Email: "alice@example.com"}, id)

	tok = sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{
		Email:            "top@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
	})
	id, err = v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "top@example.com", id.Email)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier(secret)

	tests := map[string]string{
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
		}),
		"expired": sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}),
		"no subject": sign(t, jwt.SigningMethodHS256, []byte(secret), Claims{Email: "x@example.com"}),
		"other alg": sign(t, jwt.SigningMethodHS512, []byte(secret), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
		}),
		"garbage": "not-a-token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := NewVerifier("").Verify(tests["expired"])
	assert.ErrorIs(t, err, ErrInvalidToken)
}
