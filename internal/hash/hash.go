// Package hash provides content fingerprinting for snapshot and diff
// comparison.
//
// Fingerprints are SHA-256 digests in lowercase hex. The diff engine compares
// the fingerprint of a captured file against the fingerprint of the content a
// template would render; equal fingerprints resolve a change to skip. The
// package provides a real implementation using crypto/sha256 and a fake
// implementation for testing.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher provides an abstraction for content fingerprinting.
type Hasher interface {
	// Fingerprint computes the fingerprint of the given content.
	Fingerprint(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Fingerprint computes the SHA-256 fingerprint of data as lowercase hex.
func (h *SHA256Hasher) Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FakeHasher implements Hasher with deterministic fingerprints for testing.
type FakeHasher struct {
	fingerprints map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		fingerprints: make(map[string]string),
	}
}

// SetFingerprint sets the fingerprint returned for exact content (for testing).
func (h *FakeHasher) SetFingerprint(content, fingerprint string) {
	h.fingerprints[content] = fingerprint
}

// Fingerprint returns the predetermined fingerprint for the given content.
func (h *FakeHasher) Fingerprint(data []byte) string {
	if fp, ok := h.fingerprints[string(data)]; ok {
		return fp
	}
	// Default fingerprint if not set
	return "fakefingerprint"
}
