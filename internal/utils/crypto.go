package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
)

// CryptoCodec encrypts card numbers for storage using AES-CBC with a fixed,
// configured IV. Deterministic on purpose: equal plaintexts produce equal
// ciphertexts, so the database UNIQUE constraint on the ciphertext column
// still enforces uniqueness of the underlying card number. The trade-off is
// weaker indistinguishability, acceptable for short fixed-format numbers
// that never leave the service unmasked.
//
// Encrypt/decrypt failures indicate broken configuration or corrupted data
// and are surfaced as plain errors, not business errors.
type CryptoCodec struct {
	block cipher.Block
	iv    []byte
}

// NewCryptoCodec builds a codec from the configured key and IV. The key must
// be a valid AES key length and the IV exactly one block.
func NewCryptoCodec(key, iv []byte) (*CryptoCodec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("initialization vector must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	return &CryptoCodec{block: block, iv: append([]byte(nil), iv...)}, nil
}

// Encrypt encrypts plaintext and returns Base64 ciphertext.
func (c *CryptoCodec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("input data is empty")
	}

	// PKCS#7 padding
	data := []byte(plaintext)
	padding := aes.BlockSize - len(data)%aes.BlockSize
	data = append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)

	ciphertext := make([]byte, len(data))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(ciphertext, data)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt.
func (c *CryptoCodec) Decrypt(encrypted string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("invalid ciphertext length: %d bytes", len(data))
	}

	plaintext := make([]byte, len(data))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(plaintext, data)

	padding := int(plaintext[len(plaintext)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(plaintext) {
		return "", fmt.Errorf("invalid padding value: %d", padding)
	}
	for i := len(plaintext) - padding; i < len(plaintext); i++ {
		if int(plaintext[i]) != padding {
			return "", fmt.Errorf("invalid padding byte at position %d", i)
		}
	}
	return string(plaintext[:len(plaintext)-padding]), nil
}
