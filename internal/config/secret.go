package config

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// DecryptKey opens a hex-encoded SecretBox message (nonce followed by the
// sealed box) with a 32-byte ASCII master key.
func DecryptKey(masterKey, ciphertext string) (string, error) {
	if len(masterKey) != 32 {
		return "", errors.New("secret key must be 32 bytes")
	}
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("ciphertext too short")
	}

	var key [32]byte
	copy(key[:], masterKey)
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &key)
	if !ok {
		return "", errors.New("decrypt: authentication failed")
	}
	return string(plain), nil
}
