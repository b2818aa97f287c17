package netlist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for changing the algorithm later.
const (
	DomainDesign = "netmut/design/v1"
	DomainOp     = "netmut/op/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the content hash of a design. Two designs have the
// same fingerprint exactly when their snapshots are identical, including
// the order of every net's users.
func Fingerprint(d *Design) (string, error) {
	return d.Snapshot().Fingerprint()
}

// Fingerprint returns the content hash of the snapshot.
func (s Snapshot) Fingerprint() (string, error) {
	canonical, err := s.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainDesign, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when the design is known to be valid.
func MustFingerprint(d *Design) string {
	fp, err := Fingerprint(d)
	if err != nil {
		panic(err)
	}
	return fp
}

// OpHash returns the content hash of a journaled operation.
func OpHash(kind string, args map[string]any) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"kind": kind,
		"args": args,
	})
	if err != nil {
		return "", fmt.Errorf("op hash: %w", err)
	}
	return hashWithDomain(DomainOp, canonical), nil
}
