package crypto

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// TestCrypto_DeriveKey_Deterministic tests that DeriveKey is a pure function:
// the same inputs always produce the same output.
func TestCrypto_DeriveKey_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		masterKey := rapid.SliceOfN(rapid.Byte(), 16, 64).Draw(t, "masterKey")
		purpose := rapid.String().Draw(t, "purpose")

		key1 := DeriveKey(masterKey, purpose)
		key2 := DeriveKey(masterKey, purpose)

		if !bytes.Equal(key1, key2) {
			t.Fatalf("key derivation not deterministic: %x != %x", key1, key2)
		}
	})
}

// TestCrypto_DeriveKey_DifferentPurposes_DifferentOutputs verifies domain
// separation between purposes.
func TestCrypto_DeriveKey_DifferentPurposes_DifferentOutputs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		masterKey := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "masterKey")
		purpose1 := rapid.String().Draw(t, "purpose1")
		purpose2 := rapid.String().Filter(func(s string) bool {
			return s != purpose1
		}).Draw(t, "purpose2")

		key1 := DeriveKey(masterKey, purpose1)
		key2 := DeriveKey(masterKey, purpose2)

		if bytes.Equal(key1, key2) {
			t.Fatalf("different purposes produced same key: purpose1=%q, purpose2=%q", purpose1, purpose2)
		}
	})
}

// TestCrypto_DeriveKey_DifferentMasterKeys_DifferentOutputs tests that the
// derived key depends on the master key.
func TestCrypto_DeriveKey_DifferentMasterKeys_DifferentOutputs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		master1 := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "master1")
		master2 := rapid.SliceOfN(rapid.Byte(), 32, 32).Filter(func(b []byte) bool {
			return !bytes.Equal(b, master1)
		}).Draw(t, "master2")
		purpose := rapid.String().Draw(t, "purpose")

		key1 := DeriveKey(master1, purpose)
		key2 := DeriveKey(master2, purpose)

		if bytes.Equal(key1, key2) {
			t.Fatal("different master keys produced same derived key")
		}
	})
}

// TestCrypto_DeriveKey_Length tests that DeriveKey produces 32-byte keys.
func TestCrypto_DeriveKey_Length(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		masterKey := rapid.SliceOfN(rapid.Byte(), 16, 64).Draw(t, "masterKey")
		purpose := rapid.String().Draw(t, "purpose")

		key := DeriveKey(masterKey, purpose)

		if len(key) != KeySize {
			t.Fatalf("derived key has wrong length: got %d, want %d", len(key), KeySize)
		}
	})
}

func TestCrypto_ParseMasterKey_Roundtrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, "raw")
		hexKey := hex.EncodeToString(raw)

		parsed, err := ParseMasterKey(hexKey)
		if err != nil {
			t.Fatalf("ParseMasterKey failed: %v", err)
		}
		if !bytes.Equal(parsed, raw) {
			t.Fatalf("roundtrip failed: got %x, want %x", parsed, raw)
		}
	})
}

func TestCrypto_ParseMasterKey_RejectsWrongLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 128).Filter(func(n int) bool {
			return n != MasterKeyHexLen
		}).Draw(t, "len")

		_, err := ParseMasterKey(strings.Repeat("a", n))
		if err == nil {
			t.Fatalf("ParseMasterKey accepted key of length %d", n)
		}
	})
}

func TestCrypto_ParseMasterKey_RejectsNonHex(t *testing.T) {
	_, err := ParseMasterKey(strings.Repeat("z", MasterKeyHexLen))
	if err == nil {
		t.Fatal("ParseMasterKey accepted non-hex input")
	}
}

func TestCrypto_DeriveDatabaseKey_StableAcrossCalls(t *testing.T) {
	master := bytes.Repeat([]byte{0x42}, 32)
	key1 := DeriveDatabaseKey(master)
	key2 := DeriveDatabaseKey(master)
	if !bytes.Equal(key1, key2) {
		t.Fatal("database key derivation not stable")
	}
	if len(key1) != KeySize {
		t.Fatalf("database key has wrong length: got %d, want %d", len(key1), KeySize)
	}
}
