package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every token rejection: bad signature, missing
// claims, or an expired validity window. Callers surface all of these the
// same way, so there is no finer-grained split.
var ErrInvalidToken = errors.New("invalid token")

const defaultTokenTTL = 15 * time.Minute

// TokenService issues and validates signed bearer tokens. Tokens carry the
// subject username in "sub" and an absolute RFC 3339 instant in
// "expiration"; there is no refresh mechanism, expired tokens are rejected
// and the caller re-authenticates.
type TokenService struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenService(algorithm string, key []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		auth: jwtauth.New(algorithm, key, nil),
		ttl:  ttl,
	}
}

// JWTAuth exposes the verifier handle for the router's middleware chain.
func (s *TokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.auth
}

// Issue signs a token for subject expiring at now + ttl. A non-positive ttl
// falls back to the configured default.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":        subject,
		"expiration": now.Add(ttl).Format(time.RFC3339),
		"iat":        now.Unix(),
	}
	_, tokenString, err := s.auth.Encode(claims)
	return tokenString, err
}

// Validate verifies the signature and claims of a raw token and returns the
// subject username.
func (s *TokenService) Validate(tokenString string) (string, error) {
	token, err := s.auth.Decode(tokenString)
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", ErrInvalidToken
	}
	return SubjectFromClaims(claims)
}

// SubjectFromClaims checks the claim set of an already signature-verified
// token: "sub" must be present and the "expiration" instant still in the
// future. Shared by Validate and the auth middleware.
func SubjectFromClaims(claims jwt.MapClaims) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	expRaw, ok := claims["expiration"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	exp, err := time.Parse(time.RFC3339, expRaw)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !time.Now().Before(exp) {
		return "", ErrInvalidToken
	}
	return sub, nil
}
