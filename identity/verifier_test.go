package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_HS256RoundTrip(t *testing.T) {
	t.Parallel()

	secret := "super-secret"
	v, err := NewVerifier(VerifierConfig{Secret: secret})
	require.NoError(t, err)

	tok, err := IssueToken(&Identity{Subject: "user_123", Name: "Ada", Nickname: "ada", Email: "ada@example.com"}, []byte(secret), time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "user_123", Name: "Ada", Nickname: "ada", Email: "ada@example.com"}, id)
}

func TestVerifier_Expired(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(VerifierConfig{Secret: "secret"})
	require.NoError(t, err)

	tok, err := IssueToken(&Identity{Subject: "u1"}, []byte("secret"), -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifier_WrongSecret(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(VerifierConfig{Secret: "right-secret"})
	require.NoError(t, err)

	tok, err := IssueToken(&Identity{Subject: "u2"}, []byte("wrong-secret"), time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_Malformed(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(VerifierConfig{Secret: "k"})
	require.NoError(t, err)

	_, err = v.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_MissingSubject(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(VerifierConfig{Secret: "k"})
	require.NoError(t, err)

	tok, err := IssueToken(&Identity{Name: "No Subject"}, []byte("k"), time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(tok)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestVerifier_UsernameClaimFallback(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(VerifierConfig{Secret: "k"})
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_9"},
		Username:         "hash_master",
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "hash_master", id.Nickname)
}

func TestVerifier_IssuerAndAudience(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(VerifierConfig{Secret: "k", Issuer: "https://auth.example.com", Audience: "decrypt"})
	require.NoError(t, err)

	sign := func(iss, aud string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:  "user_1",
				Issuer:   iss,
				Audience: jwt.ClaimStrings{aud},
			},
		}).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}

	_, err = v.Verify(sign("https://auth.example.com", "decrypt"))
	assert.NoError(t, err)

	_, err = v.Verify(sign("https://evil.example.com", "decrypt"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(sign("https://auth.example.com", "other"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_RS256(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewVerifier(VerifierConfig{PublicKeyPEM: string(pubPEM), Secret: "ignored"})
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user_rsa", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Email:            "rsa@example.com",
	}).SignedString(key)
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user_rsa", id.Subject)
	assert.Equal(t, "rsa", id.Handle())

	// HS256 tokens are rejected once an RSA key is configured
	hs, err := IssueToken(&Identity{Subject: "user_rsa"}, []byte("ignored"), time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(hs)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewVerifier_Errors(t *testing.T) {
	_, err := NewVerifier(VerifierConfig{})
	assert.ErrorIs(t, err, ErrNoKey)

	_, err = NewVerifier(VerifierConfig{PublicKeyPEM: "garbage"})
	assert.Error(t, err)
}
