package jwt

import (
	"errors"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TokenType separates short-lived request credentials from long-lived renewal credentials.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims defines JWT payload.
type Claims struct {
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role,omitempty"`
	Type  TokenType `json:"type"`
	jwtlib.RegisteredClaims
}

// UserID decodes the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, jwtlib.ErrTokenInvalidSubject
	}
	return id, nil
}

// Signer issues and parses HS256 tokens bound to one issuer/audience.
// The signing method is fixed; the alg header of incoming tokens is never trusted.
type Signer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewSigner builds a Signer. issuer is used for both iss and aud.
func NewSigner(secret, issuer string) (Signer, error) {
	if secret == "" {
		return Signer{}, errors.New("jwt: empty signing secret")
	}
	if strings.TrimSpace(issuer) == "" {
		return Signer{}, errors.New("jwt: empty issuer")
	}
	return Signer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock returns a copy using now as the time source for issuing and validating.
func (s Signer) WithClock(now func() time.Time) Signer {
	s.now = now
	return s
}

// Sign issues a signed JWT for the subject with the provided ttl.
func (s Signer) Sign(userID int64, email, role string, typ TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		Role:  role,
		Type:  typ,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.issuer,
			Audience:  jwtlib.ClaimStrings{s.issuer},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates signature, expiry, issuer and audience and extracts claims from token.
func (s Signer) Parse(token string) (*Claims, error) {
	return s.parse(token,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithIssuer(s.issuer),
		jwtlib.WithAudience(s.issuer),
	)
}

// ParseSignature checks only the signature and returns claims even when they are expired.
// Used where the expiry itself is the payload of interest, e.g. blacklisting.
func (s Signer) ParseSignature(token string) (*Claims, error) {
	return s.parse(token,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithoutClaimsValidation(),
	)
}

func (s Signer) parse(token string, opts ...jwtlib.ParserOption) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}
