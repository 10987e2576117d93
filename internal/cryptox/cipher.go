// Package cryptox implements the field cipher used for every confidential
// value stored on the ledger.
//
// Tokens have the form hex(iv) + ":" + hex(ciphertext), where ciphertext is
// AES-256-CBC over the PKCS#7-padded UTF-8 plaintext and iv is a fresh random
// 16-byte block per call. The key is derived once with scrypt from a
// passphrase and salt, so every process sharing them can read every token.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/electronshop/shopkeeper/internal/common"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters match the defaults of the services that wrote the
// existing ledger records (N=16384, r=8, p=1).
const (
	scryptN = 1 << 14
	scryptR = 8
	scryptP = 1
	keyLen  = 32

	tokenSeparator = ":"
)

var (
	errMissingSeparator = errors.New("token has no iv separator")
	errBadIV            = errors.New("iv must be 16 bytes")
	errBadLength        = errors.New("ciphertext is not a positive multiple of the block size")
	errBadPadding       = errors.New("invalid padding")
	errNotUTF8          = errors.New("plaintext is not valid UTF-8")
)

// FieldCipher encrypts and decrypts single string fields.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// Cipher is the AES-256-CBC FieldCipher. It is safe for concurrent use.
type Cipher struct {
	key      []byte
	indexKey []byte
}

// DeriveKey derives the 256-bit field key from passphrase and salt.
func DeriveKey(passphrase, salt string) ([]byte, error) {
	return scrypt.Key([]byte(passphrase), []byte(salt), scryptN, scryptR, scryptP, keyLen)
}

// NewCipher derives the key and returns a ready Cipher.
func NewCipher(passphrase, salt string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("cipher passphrase must not be empty")
	}
	key, err := DeriveKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	return NewCipherWithKey(key)
}

// NewCipherWithKey builds a Cipher from an already derived 32-byte key.
func NewCipherWithKey(key []byte) (*Cipher, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("key must be %d bytes, got %d", keyLen, len(key))
	}
	k := make([]byte, keyLen)
	copy(k, key)

	mac := sha256.Sum256(append([]byte("email-index:"), k...))
	return &Cipher{key: k, indexKey: mac[:]}, nil
}

// Encrypt returns a new token for plaintext. Two calls with the same input
// return different tokens.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("iv generation failed: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + tokenSeparator + hex.EncodeToString(ciphertext), nil
}

// Decrypt returns the plaintext of token. Any malformed token yields an
// error matching common.ErrDecode.
func (c *Cipher) Decrypt(token string) (string, error) {
	ivHex, ctHex, ok := strings.Cut(token, tokenSeparator)
	if !ok {
		return "", common.Decode(errMissingSeparator)
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", common.Decode(fmt.Errorf("iv: %w", err))
	}
	if len(iv) != aes.BlockSize {
		return "", common.Decode(errBadIV)
	}

	ciphertext, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", common.Decode(fmt.Errorf("ciphertext: %w", err))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", common.Decode(errBadLength)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", common.Decode(err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = unpad(plain, aes.BlockSize)
	if err != nil {
		return "", common.Decode(err)
	}
	if !utf8.Valid(plain) {
		return "", common.Decode(errNotUTF8)
	}
	return string(plain), nil
}

// IndexKey returns a deterministic keyed hash of the normalized email, used
// as the lookup key of the optional credential side index. It never leaves
// the service together with the email itself.
func (c *Cipher) IndexKey(email string) string {
	m := hmac.New(sha256.New, c.indexKey)
	m.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(m.Sum(nil))
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, errBadPadding
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}
