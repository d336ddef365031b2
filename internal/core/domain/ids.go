package domain

import (
	"crypto/sha1" //nolint:gosec // identity digest, not a security boundary
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// StableDocumentID derives a deterministic document ID from its source URI.
func StableDocumentID(source, sourceURI string) string {
	digest := sha1.Sum([]byte(sourceURI)) //nolint:gosec
	return source + ":" + hex.EncodeToString(digest[:])
}

// IdempotencyKey derives the run idempotency key for processing one
// content fingerprint of a document under a pipeline version.
func IdempotencyKey(pipelineVersion, documentID, contentFingerprint string) string {
	return strings.Join([]string{pipelineVersion, documentID, contentFingerprint}, ":")
}

// SHA256Hex returns the hex-encoded SHA-256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
