package updater

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashBytes returns the lowercase hex SHA-256 digest of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// HashReader returns the lowercase hex SHA-256 digest of everything read
// from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing stream: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile returns the lowercase hex SHA-256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()
	return HashReader(f)
}

// VerifyBytes checks b against the expected digest.
func VerifyBytes(b []byte, expected string) error {
	if actual := HashBytes(b); actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrDigestMismatch, expected, actual)
	}
	return nil
}
