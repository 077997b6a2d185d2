package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"
)

// Token decode failure kinds. The two are deliberately distinct so
// callers and clients can tell a stale session from a forged or
// malformed token.
var (
	// ErrExpiredToken is returned when the embedded expiry is in the past.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken is returned when the signature does not verify or
	// the token structure is malformed.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload embedded in every signed token.
// UserID is always present.  UserRole is set only on tokens issued by
// a full login; purpose-scoped tokens (registration confirmation,
// password reset) carry the user id alone and rely on the calling
// operation for scope limitation.  Refresh marks long-lived tokens
// used for rotation.
type Claims struct {
	UserID   string `json:"user_id"`
	UserRole string `json:"user_role,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens.  The secret must
// match between issue and decode; token lifetimes are fixed at
// construction so every caller issues consistent expiries.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	purposeTTL time.Duration
}

// NewTokenCodec builds a codec from the signing secret and the three
// token lifetimes: short-lived access tokens, long-lived refresh
// tokens, and purpose tokens used in confirmation/reset links.
func NewTokenCodec(secret string, accessTTL, refreshTTL, purposeTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		purposeTTL: purposeTTL,
	}
}

// IssueAccess signs a short-lived access token carrying the user id and
// role name.
func (c *TokenCodec) IssueAccess(userID, role string) (string, error) {
	return c.sign(Claims{UserID: userID, UserRole: role}, c.accessTTL)
}

// IssueRefresh signs a long-lived refresh token.  It carries the same
// identity claims as an access token plus the refresh marker so the
// rotation endpoint can reject access tokens presented in its place.
func (c *TokenCodec) IssueRefresh(userID, role string) (string, error) {
	return c.sign(Claims{UserID: userID, UserRole: role, Refresh: true}, c.refreshTTL)
}

// IssuePurpose signs a short-lived token carrying only the user id.
// Used for registration-confirmation and password-reset links.
func (c *TokenCodec) IssuePurpose(userID string) (string, error) {
	return c.sign(Claims{UserID: userID}, c.purposeTTL)
}

func (c *TokenCodec) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	// A unique jti keeps two tokens issued within the same second from
	// being byte-identical, which matters for refresh rotation.
	claims.ID = uuid.NewString()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode verifies the signature and expiry of a token and returns its
// claims.  Expired tokens fail with ErrExpiredToken; anything else that
// does not verify (bad signature, wrong algorithm, malformed structure)
// fails with ErrInvalidToken.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
