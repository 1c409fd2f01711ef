package security_test

import (
	"strings"
	"testing"

	"github.com/geocoder89/recipebox/internal/security"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := security.NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("test123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if hash == "test123" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}
	if !h.Matches(hash, "test123") {
		t.Fatalf("expected password to match its own hash")
	}
	if h.Matches(hash, "test124") {
		t.Fatalf("expected wrong password to be rejected")
	}
	if h.Matches(hash, "") {
		t.Fatalf("expected empty password to be rejected")
	}
}

func TestHashIsSalted(t *testing.T) {
	h := security.NewHasher(bcrypt.MinCost)

	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")

	if a == b {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	if got := security.NewHasher(99).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("got cost %d, want default", got)
	}
}

func TestZeroHasherUsesDefaultCost(t *testing.T) {
	hash, err := security.Hasher{}.Hash("awesome1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != bcrypt.DefaultCost {
		t.Fatalf("got cost %d, want default", cost)
	}
	if !(security.Hasher{}).Matches(hash, "awesome1") || (security.Hasher{}).Matches(hash, "nope") {
		t.Fatalf("zero hasher must verify its own hashes")
	}
}
