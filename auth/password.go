package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters based on OWASP/CNIL recommendations
const (
	memory      = 64 * 1024 // 64 MB
	iterations  = 3
	parallelism = 2
	saltLength  = 16
	keyLength   = 32
)

type hashParams struct {
	version     int
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// HashPassword generates a secure Argon2id hash from a plain text password.
// The returned string embeds every parameter needed for later verification.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism, b64Salt, b64Hash), nil
}

// ComparePassword compares a plain text password with a stored hash
// in constant time to prevent timing attacks.
func ComparePassword(password, encodedHash string) (bool, error) {
	params, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	comparison := argon2.IDKey([]byte(password), params.salt,
		params.iterations, params.memory, params.parallelism, uint32(len(params.hash)))

	return subtle.ConstantTimeCompare(params.hash, comparison) == 1, nil
}

func decodeHash(encodedHash string) (hashParams, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return hashParams{}, errors.New("invalid hash format")
	}

	var params hashParams
	if _, err := fmt.Sscanf(parts[2], "v=%d", &params.version); err != nil {
		return hashParams{}, err
	}
	if params.version != argon2.Version {
		return hashParams{}, errors.New("incompatible argon2 version")
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.memory, &params.iterations, &params.parallelism); err != nil {
		return hashParams{}, err
	}

	var err error
	if params.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return hashParams{}, err
	}
	if params.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return hashParams{}, err
	}
	return params, nil
}
