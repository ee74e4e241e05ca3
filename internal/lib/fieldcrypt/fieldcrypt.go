// Package fieldcrypt шифрует отдельные поля перед записью в базу (AES-256-GCM).
//
// Зашифрованное значение хранится как "enc:v1:<base64(nonce+ciphertext)>".
// Значения без префикса при расшифровке возвращаются как есть.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const prefix = "enc:v1:"

// Назначения ключей. Одно и то же секретное значение даёт разные ключи для разных данных.
const (
	PurposeContact = "contact-messages"
	PurposePayment = "payment-history"
)

var (
	// ErrEmptySecret секретный ключ не задан.
	ErrEmptySecret = errors.New("encryption key is empty")
	// ErrCorrupted значение повреждено или зашифровано другим ключом.
	ErrCorrupted = errors.New("ciphertext is corrupted")
)

// Encryptor шифрует и расшифровывает строки. Безопасен для конкурентного использования.
type Encryptor struct {
	gcm cipher.AEAD
}

// New выводит AES-256 ключ из masterSecret через HKDF для заданного назначения.
func New(masterSecret []byte, purpose string) (*Encryptor, error) {
	const op = "fieldcrypt.New"
	if len(masterSecret) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}
	r := hkdf.New(sha256.New, masterSecret, []byte("bizplan-field-encryption"), []byte(purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%s: hkdf: %w", op, err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Encryptor{gcm: gcm}, nil
}

// Encrypt шифрует plaintext. Каждый вызов использует новый nonce.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	const op = "fieldcrypt.Encrypt"
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%s: nonce: %w", op, err)
	}
	sealed := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt расшифровывает значение, полученное из Encrypt.
func (e *Encryptor) Decrypt(stored string) (string, error) {
	const op = "fieldcrypt.Decrypt"
	if !IsEncrypted(stored) {
		return stored, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, prefix))
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", op, ErrCorrupted, err)
	}
	n := e.gcm.NonceSize()
	if len(data) < n {
		return "", fmt.Errorf("%s: %w", op, ErrCorrupted)
	}
	plaintext, err := e.gcm.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrCorrupted)
	}
	return string(plaintext), nil
}

// IsEncrypted сообщает, что значение имеет префикс шифрования.
func IsEncrypted(stored string) bool {
	return strings.HasPrefix(stored, prefix)
}
