package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/geocoder89/recipebox/internal/auth"
)

func TestGenerateIsRandomAndOpaque(t *testing.T) {
	m := auth.NewManager("secret")

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := m.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil || len(raw) != 32 {
			t.Fatalf("token %q is not 32 bytes of base64url", tok)
		}

		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestHashDependsOnSecret(t *testing.T) {
	a := auth.NewManager("one")
	b := auth.NewManager("two")

	if a.Hash("tok") != a.Hash("tok") {
		t.Fatalf("hash must be deterministic")
	}
	if a.Hash("tok") == b.Hash("tok") {
		t.Fatalf("hash must depend on the secret")
	}
	if a.Hash("tok") == "tok" {
		t.Fatalf("hash must not equal the raw token")
	}
}
