package jwt

import (
	"testing"
	"time"
)

func newTestManager(duration time.Duration) *JWTManager {
	return NewJWTManager("test-secret", "adminhub", "adminhub-web", duration)
}

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := newTestManager(30 * time.Minute)

	token, err := manager.GenerateToken("u-1", "alice", 3, []string{"admin", "auditor"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := manager.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if claims.UserID != "u-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "u-1")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.SecurityLevel != 3 {
		t.Errorf("SecurityLevel = %d, want 3", claims.SecurityLevel)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" {
		t.Errorf("Roles = %v", claims.Roles)
	}
	if claims.ID == "" {
		t.Error("jti为空，无法吊销")
	}
}

func TestTokenExpiryWindow(t *testing.T) {
	manager := newTestManager(30 * time.Minute)

	token, err := manager.GenerateToken("u-1", "alice", 5, nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := manager.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	window := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	if window != 30*time.Minute {
		t.Errorf("有效期窗口 = %v, want 30m", window)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	manager := newTestManager(-time.Minute)

	token, err := manager.GenerateToken("u-1", "alice", 5, nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := manager.VerifyToken(token); err == nil {
		t.Error("过期令牌应被拒绝")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	manager := newTestManager(30 * time.Minute)
	other := NewJWTManager("other-secret", "adminhub", "adminhub-web", 30*time.Minute)

	token, err := manager.GenerateToken("u-1", "alice", 5, nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.VerifyToken(token); err == nil {
		t.Error("密钥不匹配的令牌应被拒绝")
	}
}

func TestWrongIssuerRejected(t *testing.T) {
	manager := newTestManager(30 * time.Minute)
	other := NewJWTManager("test-secret", "someone-else", "adminhub-web", 30*time.Minute)

	token, err := manager.GenerateToken("u-1", "alice", 5, nil)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := other.VerifyToken(token); err == nil {
		t.Error("签发者不匹配的令牌应被拒绝")
	}
}

func TestEachTokenHasUniqueJTI(t *testing.T) {
	manager := newTestManager(30 * time.Minute)

	t1, _ := manager.GenerateToken("u-1", "alice", 5, nil)
	t2, _ := manager.GenerateToken("u-1", "alice", 5, nil)

	c1, err := manager.VerifyToken(t1)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	c2, err := manager.VerifyToken(t2)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}

	if c1.ID == c2.ID {
		t.Error("两次签发的jti相同，按jti吊销会误伤")
	}
}
