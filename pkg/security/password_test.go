package security_test

import (
	"errors"
	"testing"

	"github.com/angelmondragon/warehousepos-backend/pkg/config"
	"github.com/angelmondragon/warehousepos-backend/pkg/security"
)

func cheapConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher := security.NewHasher(cheapConfig())

	hash, err := hasher.Hash("very-secure-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	ok, err := hasher.Verify("very-secure-password", hash)
	if err != nil || !ok {
		t.Fatalf("expected password to verify, ok=%v err=%v", ok, err)
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for wrong password: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	if _, err := security.NewHasher(cheapConfig()).Hash("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$a2V5",
	} {
		if _, err := security.VerifyPassword("pw", encoded); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := security.NewHasher(cheapConfig())
	hash, err := weak.Hash("very-secure-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if weak.NeedsRehash(hash) {
		t.Fatal("hash made with the same params should not need rehash")
	}

	strongCfg := cheapConfig()
	strongCfg.ArgonTime = 3
	if !security.NewHasher(strongCfg).NeedsRehash(hash) {
		t.Fatal("expected rehash when time cost increases")
	}
	if !weak.NeedsRehash("garbage") {
		t.Fatal("malformed hash should need rehash")
	}
}
