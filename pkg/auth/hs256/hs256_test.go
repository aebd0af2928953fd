package hs256

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SFillip/el-backend/pkg/auth"
	"github.com/SFillip/el-backend/pkg/domain"
)

func newTestSigner(t *testing.T, opts ...Option) *Signer {
	t.Helper()
	s, err := New(auth.Config{
		Secret:   "unit-test-secret-0123456789",
		Lifetime: time.Hour,
	}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestIssueValidateRoundTrip(t *testing.T) {
	s := newTestSigner(t)
	user := &domain.User{ID: "u1", Name: "alice", Privilege: domain.PrivilegeAdmin}

	tok, err := s.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := s.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("subject: want u1, got %q", claims.Subject)
	}
	if claims.Name != "alice" {
		t.Fatalf("name: want alice, got %q", claims.Name)
	}
	if claims.Privilege != domain.PrivilegeAdmin {
		t.Fatalf("privilege: want 0, got %d", claims.Privilege)
	}
	ctx := claims.Context()
	if !ctx.Valid || ctx.Subject != "u1" || ctx.Privilege != 0 {
		t.Fatalf("unexpected auth context: %+v", ctx)
	}
}

func TestValidateExpired(t *testing.T) {
	now := time.Now()
	clock := now
	s := newTestSigner(t, WithClock(func() time.Time { return clock }))

	tok, err := s.Issue(&domain.User{ID: "u1", Name: "alice", Privilege: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Exactly at issue-time + lifetime the token is no longer valid.
	clock = now.Add(time.Hour)
	if _, err := s.Validate(tok); err == nil {
		t.Fatalf("expected expiry error at exp boundary")
	}
	clock = now.Add(2 * time.Hour)
	if _, err := s.Validate(tok); err == nil {
		t.Fatalf("expected expiry error past exp")
	}
}

func TestValidateTamperedSignature(t *testing.T) {
	s := newTestSigner(t)
	tok, err := s.Issue(&domain.User{ID: "u1", Name: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)
	if _, err := s.Validate(tampered); err == nil {
		t.Fatalf("expected signature error for tampered token")
	}
}

func TestValidateGarbage(t *testing.T) {
	s := newTestSigner(t)
	for _, tok := range []string{"", "   ", "not-a-token", "a.b.c"} {
		if _, err := s.Validate(tok); err == nil {
			t.Fatalf("expected error for token %q", tok)
		}
	}
}

func TestValidateWrongSecret(t *testing.T) {
	s1 := newTestSigner(t)
	s2, err := New(auth.Config{Secret: "another-secret-0123456789", Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tok, _ := s1.Issue(&domain.User{ID: "u1"})
	if _, err := s2.Validate(tok); err == nil {
		t.Fatalf("expected error for token signed with a different secret")
	}
}

func TestMissingPrivilegeDegradesToUser(t *testing.T) {
	if p := privilegeClaim(map[string]interface{}{}); p != domain.PrivilegeUser {
		t.Fatalf("absent privilege must degrade to user level, got %d", p)
	}
}

func TestShortSecretRejected(t *testing.T) {
	if _, err := New(auth.Config{Secret: "short", Lifetime: time.Hour}); err == nil {
		t.Fatalf("expected error for short secret")
	}
	if _, err := New(auth.Config{Secret: "long-enough-secret-123", Lifetime: 0}); err == nil {
		t.Fatalf("expected error for non-positive lifetime")
	}
}

func TestConcurrentValidationIsolation(t *testing.T) {
	s := newTestSigner(t)
	tokA, err := s.Issue(&domain.User{ID: "subject-a", Name: "a", Privilege: 1})
	if err != nil {
		t.Fatalf("Issue A: %v", err)
	}
	tokB, err := s.Issue(&domain.User{ID: "subject-b", Name: "b", Privilege: 0})
	if err != nil {
		t.Fatalf("Issue B: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c, err := s.Validate(tokA)
			if err != nil {
				errs <- err
				return
			}
			if c.Subject != "subject-a" || c.Privilege != 1 {
				errs <- &crossContamination{c.Subject, int(c.Privilege)}
			}
		}()
		go func() {
			defer wg.Done()
			c, err := s.Validate(tokB)
			if err != nil {
				errs <- err
				return
			}
			if c.Subject != "subject-b" || c.Privilege != 0 {
				errs <- &crossContamination{c.Subject, int(c.Privilege)}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent validation: %v", err)
	}
}

type crossContamination struct {
	subject   string
	privilege int
}

func (e *crossContamination) Error() string {
	return "claims leaked across validations: " + e.subject
}
