package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// sealedHeaderSize is version (1) || salt (16).
const sealedHeaderSize = 1 + KeyWrapSaltSize

// SealPrivateKey encrypts the text envelope of priv under password.
//
// The output is standard base64 of
//
//	version (1) || salt (16) || nonce (12) || ciphertext || tag (16)
//
// The AES-256-GCM key is HKDF-SHA-512(PBKDF2-HMAC-SHA-256(password, salt),
// salt, KeyWrapContext); version and salt are authenticated as associated data.
func SealPrivateKey(priv *PrivateKey, password []byte, rng io.Reader) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}

	plaintext, err := MarshalPrivateKey(priv)
	if err != nil {
		return "", err
	}

	rng = randSource(rng)
	header := make([]byte, sealedHeaderSize)
	header[0] = KeyWrapVersion
	salt := header[1:]
	if _, err := io.ReadFull(rng, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, AESNonceSize)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	key, err := deriveWrapKey(password, salt)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, sealedHeaderSize+AESNonceSize+len(plaintext)+AESTagSize)
	out = append(out, header...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), header)
	return ToBase64(out), nil
}

// OpenPrivateKey reverses SealPrivateKey. A wrong password, a tampered blob
// or an unsupported version all return ErrDecryptionFailed.
func OpenPrivateKey(sealed string, password []byte) (*PrivateKey, error) {
	data, err := FromBase64(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid encoding", ErrDecryptionFailed)
	}
	if len(data) < sealedHeaderSize+AESNonceSize+AESTagSize {
		return nil, fmt.Errorf("%w: data too short", ErrDecryptionFailed)
	}
	if data[0] != KeyWrapVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDecryptionFailed, data[0])
	}

	header := data[:sealedHeaderSize]
	nonce := data[sealedHeaderSize : sealedHeaderSize+AESNonceSize]
	ciphertext := data[sealedHeaderSize+AESNonceSize:]

	key, err := deriveWrapKey(password, header[1:])
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return ParsePrivateKey(string(plaintext))
}

// deriveWrapKey stretches the password with PBKDF2 and separates the AES key
// domain with HKDF-SHA-512.
func deriveWrapKey(password, salt []byte) ([]byte, error) {
	stretched := pbkdf2.Key(password, salt, KeyWrapIterations, AESKeySize, sha256.New)

	reader := hkdf.New(sha512.New, stretched, salt, []byte(KeyWrapContext))
	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
