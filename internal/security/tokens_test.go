package security

import (
	"testing"
	"time"
)

func TestTokenCodec_IssueAccessAndRefresh(t *testing.T) {
	c := NewTestTokenCodec()
	id := Identity{
		AccountID:   "a1",
		Username:    "alice",
		Roles:       []string{"admin"},
		Permissions: []string{"users.read", "users.write"},
	}

	access, accessExp, err := c.IssueAccess(id, "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" {
		t.Fatal("access token empty")
	}
	if accessExp.Before(time.Now()) {
		t.Fatal("access expires at in the past")
	}

	refresh, refreshExp, err := c.IssueRefresh(id, "s1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if refresh == "" {
		t.Fatal("refresh token empty")
	}
	if refreshExp.Before(accessExp) {
		t.Fatal("refresh should outlive access")
	}

	claims, err := c.VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "a1" || claims.Username != "alice" || claims.SessionID != "s1" {
		t.Errorf("access claims: got subject=%q username=%q session=%q", claims.Subject, claims.Username, claims.SessionID)
	}
	if claims.Kind != TokenKindAccess {
		t.Errorf("access claims kind = %q, want %q", claims.Kind, TokenKindAccess)
	}
	if len(claims.Permissions) != 2 {
		t.Errorf("access claims permissions = %v", claims.Permissions)
	}

	rclaims, err := c.VerifyRefresh(refresh)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if rclaims.Kind != TokenKindRefresh {
		t.Errorf("refresh claims kind = %q, want %q", rclaims.Kind, TokenKindRefresh)
	}
}

func TestTokenCodec_KindsAreNotInterchangeable(t *testing.T) {
	c := NewTestTokenCodec()
	id := Identity{AccountID: "a1", Username: "alice"}

	access, _, err := c.IssueAccess(id, "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _, err := c.IssueRefresh(id, "s1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := c.VerifyRefresh(access); err != ErrInvalidToken {
		t.Errorf("access token as refresh: want ErrInvalidToken, got %v", err)
	}
	if _, err := c.VerifyAccess(refresh); err != ErrInvalidToken {
		t.Errorf("refresh token as access: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyMalformed(t *testing.T) {
	c := NewTestTokenCodec()
	if _, err := c.VerifyAccess("not-a-token"); err != ErrInvalidToken {
		t.Errorf("malformed access: want ErrInvalidToken, got %v", err)
	}
	if _, err := c.VerifyRefresh(""); err != ErrInvalidToken {
		t.Errorf("empty refresh: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyWrongSecret(t *testing.T) {
	c := NewTestTokenCodec()
	other := NewTokenCodec([]byte("other-access"), []byte("other-refresh"), "test-issuer", time.Minute, time.Hour)

	access, _, err := other.IssueAccess(Identity{AccountID: "a1"}, "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := c.VerifyAccess(access); err != ErrInvalidToken {
		t.Errorf("foreign signature: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyWrongIssuer(t *testing.T) {
	c := NewTestTokenCodec()
	other := NewTokenCodec([]byte(testAccessSecret), []byte(testRefreshSecret), "someone-else", time.Minute, time.Hour)

	access, _, err := other.IssueAccess(Identity{AccountID: "a1"}, "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := c.VerifyAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_VerifyExpired(t *testing.T) {
	c := NewShortLivedTestTokenCodec(-time.Minute, -time.Minute)

	access, _, err := c.IssueAccess(Identity{AccountID: "a1"}, "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := c.VerifyAccess(access); err != ErrTokenExpired {
		t.Errorf("expired access: want ErrTokenExpired, got %v", err)
	}

	refresh, _, err := c.IssueRefresh(Identity{AccountID: "a1"}, "s1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := c.VerifyRefresh(refresh); err != ErrTokenExpired {
		t.Errorf("expired refresh: want ErrTokenExpired, got %v", err)
	}
}
