// Package canonicalize provides RFC 8785 (JSON Canonicalization Scheme)
// compliant serialization for deterministic hashing of classification records.
//
// Every content hash in the library goes through this package so that two
// processes hashing the same record always agree, regardless of map iteration
// order or encoder settings.
package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// JCS returns the RFC 8785 canonical JSON representation of v.
//
// v is first marshaled with the standard encoder so struct tags are honored,
// then transformed into canonical form (sorted keys, no HTML escaping,
// ES6-compatible number formatting).
func JCS(v interface{}) ([]byte, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: pre-marshal failed: %w", err)
	}
	canonical, err := jcs.Transform(intermediate)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: jcs transform failed: %w", err)
	}
	return canonical, nil
}

// CanonicalHash returns the SHA-256 hex digest of the canonical JSON
// representation of v.
func CanonicalHash(v interface{}) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// HashBytes computes the SHA-256 hash of raw bytes and returns the hex string.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// PrefixedHash returns the canonical hash of v with the "sha256:" scheme
// prefix used by the audit substrate.
func PrefixedHash(v interface{}) (string, error) {
	h, err := CanonicalHash(v)
	if err != nil {
		return "", err
	}
	return "sha256:" + h, nil
}

// JCSString returns the canonical form as a string.
func JCSString(v interface{}) (string, error) {
	data, err := JCS(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
