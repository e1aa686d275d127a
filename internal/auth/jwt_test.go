package auth

import (
	"testing"
	"time"

	"moving-voice-agent/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tok, err := m.Issue(now, "u-1", RoleDispatcher)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Verify(tok, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != RoleDispatcher {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tok, err := m.Issue(now, "u-1", RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := m.Verify(tok, now.Add(13*time.Hour)); err == nil {
		t.Fatalf("expected expired token error")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager(config.AuthConfig{JWTSecret: "other-secret"})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tok, err := m.Issue(now, "u-1", RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(tok, now); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Issue(time.Now(), "u-1", "superuser"); err == nil {
		t.Fatalf("expected unknown role error")
	}
}
