package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the encoding to change later.
const (
	DomainOperation = "irkit/op/v1"
	DomainAttribute = "irkit/attr/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// OpFingerprint computes a content hash of op's local shape: kind name,
// attributes, operand types, result types and region count. Two operations
// with equal fingerprints are interchangeable as far as their own
// definition goes; their operands may still differ.
func OpFingerprint(op *Operation) (string, error) {
	operandTypes := make([]any, len(op.operands))
	for i, v := range op.operands {
		operandTypes[i] = v.typ
	}
	resultTypes := make([]any, len(op.results))
	for i, v := range op.results {
		resultTypes[i] = v.typ
	}

	obj := map[string]any{
		"name":          op.name,
		"attributes":    op.Attributes(),
		"operand_types": operandTypes,
		"result_types":  resultTypes,
		"regions":       len(op.regions),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("OpFingerprint %s: %w", op.name, err)
	}
	return hashWithDomain(DomainOperation, canonical), nil
}

// AttrFingerprint computes a content hash of a single attribute.
func AttrFingerprint(a Attribute) (string, error) {
	canonical, err := MarshalCanonical(a)
	if err != nil {
		return "", fmt.Errorf("AttrFingerprint: %w", err)
	}
	return hashWithDomain(DomainAttribute, canonical), nil
}

// MustOpFingerprint is like OpFingerprint but panics on error.
// Use only in tests or when attributes are known to be encodable.
func MustOpFingerprint(op *Operation) string {
	fp, err := OpFingerprint(op)
	if err != nil {
		panic(err)
	}
	return fp
}
