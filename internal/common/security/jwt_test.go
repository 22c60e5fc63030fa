package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndValidate(t *testing.T) {
	tokens := NewTokenService("HS256", []byte("test-secret"), 15*time.Minute)

	token, err := tokens.Issue("u1", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	subject, err := tokens.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if subject != "u1" {
		t.Errorf("expected subject u1, got %s", subject)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	tokens := NewTokenService("HS256", []byte("test-secret"), 15*time.Minute)
	otherKey := NewTokenService("HS256", []byte("other-secret"), 15*time.Minute)

	token, err := tokens.Issue("u1", 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := otherKey.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong key, got %v", err)
	}
	if _, err := tokens.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for garbage, got %v", err)
	}
	if _, err := tokens.Validate(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for empty string, got %v", err)
	}
}

func TestSubjectFromClaims(t *testing.T) {
	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	past := time.Now().Add(-time.Second).Format(time.RFC3339)

	cases := []struct {
		name    string
		claims  jwt.MapClaims
		subject string
		wantErr bool
	}{
		{"valid", jwt.MapClaims{"sub": "u1", "expiration": future}, "u1", false},
		{"missing sub", jwt.MapClaims{"expiration": future}, "", true},
		{"empty sub", jwt.MapClaims{"sub": "", "expiration": future}, "", true},
		{"missing expiration", jwt.MapClaims{"sub": "u1"}, "", true},
		{"malformed expiration", jwt.MapClaims{"sub": "u1", "expiration": "tomorrow"}, "", true},
		{"non-string expiration", jwt.MapClaims{"sub": "u1", "expiration": 12345}, "", true},
		{"expired", jwt.MapClaims{"sub": "u1", "expiration": past}, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subject, err := SubjectFromClaims(tc.claims)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if subject != tc.subject {
				t.Errorf("expected subject %s, got %s", tc.subject, subject)
			}
		})
	}
}

func TestExpirationBoundaryIsRejected(t *testing.T) {
	// "at or after the expiration instant" must fail, not just "after".
	now := time.Now().Format(time.RFC3339)
	claims := jwt.MapClaims{"sub": "u1", "expiration": now}

	if _, err := SubjectFromClaims(claims); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected token expiring now to be invalid, got %v", err)
	}
}

func TestIssueHonorsExplicitTTL(t *testing.T) {
	tokens := NewTokenService("HS256", []byte("test-secret"), time.Minute)

	token, err := tokens.Issue("u1", 2*time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := tokens.Validate(token); err != nil {
		t.Fatalf("token with explicit ttl should validate: %v", err)
	}
}
