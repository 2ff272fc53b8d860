package util

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
	"time"
)

// Fingerprint identifies the exact archive file an export was taken from
type Fingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
	SHA1    string
}

// FingerprintFile stats path and hashes its content
func FingerprintFile(path string) (*Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	hash, err := ContentHash(path)
	if err != nil {
		return nil, err
	}

	return &Fingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
		SHA1:    hash,
	}, nil
}

// ContentHash creates a SHA1 hash of file content
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
