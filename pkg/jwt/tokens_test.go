package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const testIssuer = "https://learn.example.com"

func newTestSigner(t *testing.T) Signer {
	t.Helper()
	s, err := NewSigner("test-secret", testIssuer)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return s
}

func TestSignAndParse(t *testing.T) {
	s := newTestSigner(t)
	token, err := s.Sign(7, "a@b.com", "student", TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Fatalf("unexpected subject %q (%v)", claims.Subject, err)
	}
	if claims.Issuer != testIssuer || len(claims.Audience) != 1 || claims.Audience[0] != testIssuer {
		t.Fatalf("unexpected iss/aud: %q %v", claims.Issuer, claims.Audience)
	}
	if claims.Type != TokenAccess || claims.Email != "a@b.com" || claims.Role != "student" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsOtherIssuer(t *testing.T) {
	staging, err := NewSigner("test-secret", "https://staging.example.com")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	token, err := staging.Sign(1, "", "", TokenAccess, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestSigner(t).Parse(token); !errors.Is(err, jwtlib.ErrTokenInvalidIssuer) {
		t.Fatalf("expected issuer error, got %v", err)
	}
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	s := newTestSigner(t)
	claims := Claims{
		Type: TokenAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "1",
			Issuer:    testIssuer,
			Audience:  jwtlib.ClaimStrings{testIssuer},
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	hs512, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	if _, err := s.Parse(hs512); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := s.Parse(none); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

func TestParseSignatureAcceptsExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	s := newTestSigner(t).WithClock(func() time.Time { return past })
	token, err := s.Sign(3, "", "", TokenRefresh, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	current := newTestSigner(t)
	if _, err := current.Parse(token); !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
	claims, err := current.ParseSignature(token)
	if err != nil {
		t.Fatalf("expected signature-only parse to succeed: %v", err)
	}
	if claims.Type != TokenRefresh {
		t.Fatalf("unexpected type %q", claims.Type)
	}
}

func TestNewSignerRequiresSecret(t *testing.T) {
	if _, err := NewSigner("", testIssuer); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestNewSignerRequiresIssuer(t *testing.T) {
	for _, issuer := range []string{"", "   "} {
		if _, err := NewSigner("test-secret", issuer); err == nil {
			t.Fatalf("expected error for issuer %q", issuer)
		}
	}
}

func TestParseRejectsMissingIssuer(t *testing.T) {
	s := newTestSigner(t)
	claims := Claims{
		Type: TokenAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Parse(token); err == nil {
		t.Fatalf("expected token without iss/aud to be rejected")
	}
}
