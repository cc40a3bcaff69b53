package security

import (
	"strings"
	"testing"

	"github.com/rgastelum/supplyline-backend/pkg/config"
)

func testHasher() *PasswordHasher {
	// small parameters keep the test fast; production values come from config
	return NewPasswordHasher(config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func TestHashVerifyRoundtrip(t *testing.T) {
	t.Parallel()

	hasher := testHasher()
	encoded, err := hasher.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format %q", encoded)
	}

	ok, err := hasher.Verify("correct horse battery staple", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("correct password should verify")
	}

	ok, err = hasher.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	hasher := testHasher()
	first, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	hasher := testHasher()
	if _, err := hasher.Verify("secret", "not-a-hash"); err == nil {
		t.Fatal("expected malformed hash to error")
	}
	if _, err := hasher.Verify("secret", "$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$a2V5"); err == nil {
		t.Fatal("expected non-argon2id hash to error")
	}
}
