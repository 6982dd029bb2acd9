package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainModel is the domain prefix for content-addressed model identity.
// The version suffix enables future canonical-form migration.
const DomainModel = "pir/model/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of a model: the
// domain-separated SHA-256 of its canonical JSON form, hex-encoded.
// Two structurally equal models hash identically regardless of how they
// were built or in what order their maps were populated.
func Hash(m *Model) (string, error) {
	canonical, err := MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("model hash: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// MustHash is like Hash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustHash(m *Model) string {
	h, err := Hash(m)
	if err != nil {
		panic(err)
	}
	return h
}
