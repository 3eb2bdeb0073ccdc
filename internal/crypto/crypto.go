// Package crypto derives the database encryption key from the master key.
// Keys are derived with HKDF-SHA256 so that distinct purposes (database
// encryption, future signing keys) never share key material.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of a derived key in bytes (256 bits)
	KeySize = 32

	// MasterKeyHexLen is the required length of the MASTER_KEY env var
	MasterKeyHexLen = 64
)

// ParseMasterKey decodes the hex-encoded master key and validates its length.
func ParseMasterKey(hexKey string) ([]byte, error) {
	if len(hexKey) != MasterKeyHexLen {
		return nil, fmt.Errorf("master key must be %d hex characters, got %d", MasterKeyHexLen, len(hexKey))
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	return key, nil
}

// DeriveKey derives a 32-byte key from the master key using HKDF-SHA256.
// The purpose string provides domain separation, e.g. "db:v1".
func DeriveKey(masterKey []byte, purpose string) []byte {
	// Salt is nil: the master key is already high-entropy.
	hkdfReader := hkdf.New(sha256.New, masterKey, nil, []byte(purpose))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		// HKDF cannot fail to produce 32 bytes for valid inputs.
		panic(fmt.Sprintf("HKDF failed: %v", err))
	}

	return key
}

// DeriveDatabaseKey derives the SQLCipher key for the application database.
func DeriveDatabaseKey(masterKey []byte) []byte {
	return DeriveKey(masterKey, "db:v1")
}
