package ident

import (
	"crypto/sha256"
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	tokens := []string{"  Malaki ", "ANG", "", "bahay\r"}
	expected := "malaki\nang\nbahay"
	normalized := Normalize(tokens)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%q', but got '%q'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		expectedHash := fmt.Sprintf("%x", sha256.Sum256([]byte("kumain\nako")))
		hash := Hash([]string{"kumain", "ako"})

		if hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		if Hash([]string{" Kumain", "AKO "}) != Hash([]string{"kumain", "ako"}) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("token boundaries matter", func(t *testing.T) {
		if Hash([]string{"ab", "c"}) == Hash([]string{"a", "bc"}) {
			t.Error("Expected different token splits to hash differently")
		}
	})

	t.Run("different sentences have different hashes", func(t *testing.T) {
		if Hash([]string{"malaki", "ang", "bahay"}) == Hash([]string{"maliit", "ang", "bahay"}) {
			t.Error("Expected hashes for different sentences to be different")
		}
	})
}

func TestShort(t *testing.T) {
	h := Hash([]string{"kumain", "ako"})
	if got := Short(h); len(got) != 12 || got != h[:12] {
		t.Errorf("Expected 12 character prefix, got '%s'", got)
	}
	if Short("abc") != "abc" {
		t.Error("Expected short input to be returned unchanged")
	}
}
