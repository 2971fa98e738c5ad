package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	svc := NewService("secret", time.Hour)
	name := "Jane"

	raw, err := svc.Sign("user-1", Claims{Username: "jane@mail.com", Name: &name, Role: "USER"})
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "jane@mail.com", claims.Username)
	assert.Equal(t, "USER", claims.Role)
	require.NotNil(t, claims.Name)
	assert.Equal(t, "Jane", *claims.Name)
}

func TestVerify_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService("secret", time.Minute).WithClock(func() time.Time { return issued })

	raw, err := svc.Sign("user-1", Claims{Username: "a"})
	require.NoError(t, err)

	later := svc.WithClock(func() time.Time { return issued.Add(2 * time.Minute) })
	_, err = later.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, err := NewService("one", time.Hour).Sign("user-1", Claims{Username: "a"})
	require.NoError(t, err)

	_, err = NewService("two", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Username: "a",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewService("secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	claims := Claims{
		Username:         "a",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: issuer},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewService("secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	svc := NewService("secret", time.Hour)

	_, err := svc.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
