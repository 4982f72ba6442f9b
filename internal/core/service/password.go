package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by NewPasswordVerifier.
const (
	PasswordSchemePlain  = "plain"
	PasswordSchemeBcrypt = "bcrypt"
	PasswordSchemeArgon2 = "argon2id"
)

// PasswordVerifier is the single place passwords are transformed for storage
// and compared at sign-in.
type PasswordVerifier interface {
	// Hash returns the form of plain that the credential store keeps.
	Hash(plain string) (string, error)

	// Compare reports whether presented matches the stored form.
	Compare(stored, presented string) bool
}

// NewPasswordVerifier returns the verifier for scheme. An empty scheme is
// plain.
func NewPasswordVerifier(scheme string) (PasswordVerifier, error) {
	switch scheme {
	case "", PasswordSchemePlain:
		return PlainVerifier{}, nil
	case PasswordSchemeBcrypt:
		return BcryptVerifier{Cost: bcrypt.DefaultCost}, nil
	case PasswordSchemeArgon2:
		return DefaultArgon2Verifier(), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// PlainVerifier stores passwords unchanged and compares in constant time.
type PlainVerifier struct{}

// Hash returns plain unchanged.
func (PlainVerifier) Hash(plain string) (string, error) {
	return plain, nil
}

// Compare reports byte equality without early exit.
func (PlainVerifier) Compare(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

// Hash returns the bcrypt hash of plain.
func (v BcryptVerifier) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), v.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

// Compare reports whether presented hashes to stored. A malformed stored
// hash never matches.
func (BcryptVerifier) Compare(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// Argon2Verifier stores argon2id hashes in the PHC string format
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>.
type Argon2Verifier struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Verifier returns argon2id with m=16384, t=2, p=2.
func DefaultArgon2Verifier() Argon2Verifier {
	return Argon2Verifier{
		Time:    2,
		Memory:  16 * 1024,
		Threads: 2,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Hash returns the encoded argon2id hash of plain under a fresh salt.
func (v Argon2Verifier) Hash(plain string) (string, error) {
	salt := make([]byte, v.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, v.Time, v.Memory, v.Threads, v.KeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, v.Memory, v.Time, v.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Compare recomputes the key with the parameters encoded in stored.
// Malformed hashes, and hashes asking for more than twice the configured
// cost, never match.
func (v Argon2Verifier) Compare(stored, presented string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	if !withinTwice(uint64(memory), uint64(v.Memory)) ||
		!withinTwice(uint64(iterations), uint64(v.Time)) ||
		!withinTwice(uint64(threads), uint64(v.Threads)) {
		return false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 {
		return false
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil || len(want) < 16 || len(want) > 128 {
		return false
	}

	got := argon2.IDKey([]byte(presented), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// withinTwice reports whether 0 < got <= 2*limit. Callers widen to uint64 so
// the doubling cannot wrap.
func withinTwice(got, limit uint64) bool {
	return got > 0 && got <= 2*limit
}
