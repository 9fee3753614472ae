// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/foyer-systems/foyer/lib/atomicfile"
)

// Errors returned by Load and Verify.
var (
	// ErrNotProvisioned means no administrator record exists yet;
	// provisioning has not run.
	ErrNotProvisioned = errors.New("identity: administrator record does not exist")

	// ErrCorrupt means the record file exists but cannot be parsed
	// or is missing required fields. Recovering requires out-of-band
	// re-provisioning; this package never overwrites a corrupt file.
	ErrCorrupt = errors.New("identity: administrator record is corrupt")
)

// argon2id parameters. Recorded in the encoded hash, so they can be
// raised later without invalidating existing records.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Admin is the administrator record persisted at setup time.
type Admin struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store reads and writes the administrator record file.
type Store struct {
	path string
}

// NewStore returns a Store for the record at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Create hashes the password and writes the administrator record.
// The caller is responsible for ensuring provisioning has not already
// completed; Create itself will happily overwrite, which is exactly
// what a retried provisioning attempt after a crash needs.
func (s *Store) Create(username, password string, now time.Time) error {
	if username == "" {
		return errors.New("identity: username is empty")
	}
	if password == "" {
		return errors.New("identity: password is empty")
	}

	encoded, err := hashPassword(password)
	if err != nil {
		return err
	}

	record := Admin{
		Username:     username,
		PasswordHash: encoded,
		CreatedAt:    now.UTC(),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("identity: encoding record: %w", err)
	}
	data = append(data, '\n')

	if err := atomicfile.Write(s.path, data, 0600); err != nil {
		return fmt.Errorf("identity: writing record to %s: %w", s.path, err)
	}
	return nil
}

// Load reads and parses the administrator record. Returns
// ErrNotProvisioned when the file is absent and ErrCorrupt when it
// exists but cannot be understood.
func (s *Store) Load() (*Admin, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotProvisioned
		}
		return nil, fmt.Errorf("identity: reading record from %s: %w", s.path, err)
	}

	var record Admin
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if record.Username == "" || record.PasswordHash == "" {
		return nil, fmt.Errorf("%w: missing username or password hash", ErrCorrupt)
	}
	return &record, nil
}

// Verify checks the supplied credentials against the stored record.
// Wrong credentials are (false, nil); errors are reserved for storage
// and parse failures. Both the username and the recomputed hash are
// compared in constant time, and both comparisons always run, so the
// duration does not reveal which field was wrong.
func (s *Store) Verify(username, password string) (bool, error) {
	record, err := s.Load()
	if err != nil {
		return false, err
	}

	hashOK, err := verifyPassword(record.PasswordHash, password)
	if err != nil {
		return false, err
	}
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(record.Username)) == 1

	return usernameOK && hashOK, nil
}

// hashPassword derives an argon2id hash with a fresh random salt and
// encodes it in PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<base64 salt>$<base64 hash>
func hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("identity: generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// verifyPassword recomputes the hash of password using the salt and
// parameters stored in encoded and compares in constant time.
func verifyPassword(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	// Leading "$" produces an empty first element.
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: unrecognized password hash format", ErrCorrupt)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, fmt.Errorf("%w: unsupported argon2 version %q", ErrCorrupt, parts[2])
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("%w: malformed argon2 parameters %q", ErrCorrupt, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: malformed salt: %v", ErrCorrupt, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: malformed hash: %v", ErrCorrupt, err)
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
