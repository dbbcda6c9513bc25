package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, carries a bad
	// signature, has the wrong kind, or was issued by someone else.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token's signature is fine but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// TokenKind discriminates access from refresh credentials. An access-kind
// token is never accepted where a refresh-kind is required, and vice versa.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the signed claim set carried by both token kinds. Subject holds
// the account id; timestamps are absolute Unix-epoch seconds.
type Claims struct {
	jwt.RegisteredClaims
	Username    string    `json:"username,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	SessionID   string    `json:"session_id"`
	Kind        TokenKind `json:"kind"`
}

// Identity is the account snapshot embedded in issued tokens.
type Identity struct {
	AccountID   string
	Username    string
	Roles       []string
	Permissions []string
}

// TokenCodec issues and verifies HS256 access and refresh tokens. The two
// kinds are signed with distinct secrets so a leaked access secret cannot
// forge refresh credentials.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenCodec returns a TokenCodec signing with the given per-kind secrets.
// issuer is set on claims and validated on verify.
func NewTokenCodec(accessSecret, refreshSecret []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess issues a short-lived access token for the given identity and session.
// Returns the token string and its expiration time.
func (c *TokenCodec) IssueAccess(id Identity, sessionID string) (string, time.Time, error) {
	return c.issue(id, sessionID, TokenKindAccess, c.accessSecret, c.accessTTL)
}

// IssueRefresh issues a long-lived refresh token for the given identity and
// session. The caller must bind the returned token value to the session so a
// rotated-out value can be recognized on replay.
func (c *TokenCodec) IssueRefresh(id Identity, sessionID string) (string, time.Time, error) {
	return c.issue(id, sessionID, TokenKindRefresh, c.refreshSecret, c.refreshTTL)
}

func (c *TokenCodec) issue(id Identity, sessionID string, kind TokenKind, secret []byte, ttl time.Duration) (string, time.Time, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   id.AccountID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username:    id.Username,
		Roles:       id.Roles,
		Permissions: id.Permissions,
		SessionID:   sessionID,
		Kind:        kind,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// VerifyAccess parses and verifies an access token (signature, exp, iss, kind).
func (c *TokenCodec) VerifyAccess(tokenString string) (*Claims, error) {
	return c.verify(tokenString, TokenKindAccess, c.accessSecret)
}

// VerifyRefresh parses and verifies a refresh token (signature, exp, iss, kind).
func (c *TokenCodec) VerifyRefresh(tokenString string) (*Claims, error) {
	return c.verify(tokenString, TokenKindRefresh, c.refreshSecret)
}

func (c *TokenCodec) verify(tokenString string, kind TokenKind, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != c.issuer {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
