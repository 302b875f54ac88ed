package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored hashes are self-describing: pbkdf2_sha256$<iterations>$<salt>$<key>
// with url-safe base64 segments. Encoding the iteration count into the value
// lets the cost be raised later without invalidating existing hashes.
const (
	pbkdf2Prefix  = "pbkdf2_sha256"
	pbkdf2SaltLen = 16
	pbkdf2KeyLen  = 32

	// DefaultPBKDF2Iterations is the iteration count used when no explicit
	// count is configured.
	DefaultPBKDF2Iterations = 390000
)

// HashPassword derives a salted PBKDF2-SHA256 hash of the given password
// using a fresh random salt and the given iteration count.
func HashPassword(plain string, iterations int) (string, error) {
	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(plain), salt, iterations, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		pbkdf2Prefix,
		iterations,
		base64.RawURLEncoding.EncodeToString(salt),
		base64.RawURLEncoding.EncodeToString(key)), nil
}

// VerifyPassword checks a plain password against a stored hash. A malformed,
// empty or unsupported stored value fails closed: the result is false, never
// an error or a panic. An account with no usable hash therefore rejects every
// password, including the empty string.
func VerifyPassword(storedHash, plain string) bool {
	if storedHash == "" {
		return false
	}
	parts := strings.Split(storedHash, "$")
	if len(parts) != 4 || parts[0] != pbkdf2Prefix {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := decodeB64URL(parts[2])
	if err != nil {
		return false
	}
	expected, err := decodeB64URL(parts[3])
	if err != nil || len(expected) == 0 {
		return false
	}
	computed := pbkdf2.Key([]byte(plain), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// decodeB64URL accepts url-safe base64 with or without padding.
func decodeB64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
