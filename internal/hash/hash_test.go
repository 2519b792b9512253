package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hasher_Fingerprint(t *testing.T) {
	h := NewSHA256Hasher()

	// Known vector: sha256 of the empty string.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		h.Fingerprint(nil))

	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		h.Fingerprint([]byte("hello")))
}

func TestSHA256Hasher_Deterministic(t *testing.T) {
	h := NewSHA256Hasher()
	content := []byte("# main.py\nprint('hello')\n")

	first := h.Fingerprint(content)
	second := h.Fingerprint(content)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestSHA256Hasher_DistinguishesContent(t *testing.T) {
	h := NewSHA256Hasher()

	assert.NotEqual(t, h.Fingerprint([]byte("a")), h.Fingerprint([]byte("b")))
}

func TestFakeHasher(t *testing.T) {
	h := NewFakeHasher()
	h.SetFingerprint("known content", "abc123")

	assert.Equal(t, "abc123", h.Fingerprint([]byte("known content")))
	assert.Equal(t, "fakefingerprint", h.Fingerprint([]byte("unknown content")))
}
