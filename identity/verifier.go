package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no subject")
	ErrNoKey          = errors.New("no verification key configured")
)

// Claims are the session token claims issued by the identity provider
type Claims struct {
	jwt.RegisteredClaims
	Name     string `json:"name,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// VerifierConfig selects how session tokens are checked.
// PublicKeyPEM takes precedence over Secret when both are set.
type VerifierConfig struct {
	Secret       string
	PublicKeyPEM string
	Issuer       string
	Audience     string
}

// Verifier turns bearer tokens into identities
type Verifier struct {
	key     any
	methods []string
	opts    []jwt.ParserOption
}

// NewVerifier builds a verifier from cfg
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	v := &Verifier{}

	switch {
	case cfg.PublicKeyPEM != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		v.key = pub
		v.methods = []string{jwt.SigningMethodRS256.Alg()}
	case cfg.Secret != "":
		v.key = []byte(cfg.Secret)
		v.methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, ErrNoKey
	}

	v.opts = append(v.opts, jwt.WithValidMethods(v.methods), jwt.WithLeeway(5*time.Second))
	if cfg.Issuer != "" {
		v.opts = append(v.opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		v.opts = append(v.opts, jwt.WithAudience(cfg.Audience))
	}

	return v, nil
}

// Verify parses and validates tokenString and returns the identity it asserts
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	nickname := claims.Nickname
	if nickname == "" {
		nickname = claims.Username
	}

	return &Identity{
		Subject:  claims.Subject,
		Name:     claims.Name,
		Nickname: nickname,
		Email:    claims.Email,
	}, nil
}

// IssueToken signs an HS256 session token for id. It backs the local `token`
// command and tests; production tokens come from the identity provider.
func IssueToken(id *Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:     id.Name,
		Nickname: id.Nickname,
		Email:    id.Email,
	})

	return token.SignedString(secret)
}
