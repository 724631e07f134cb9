package services

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// fingerprintLength is the number of hex characters exposed for a credential.
const fingerprintLength = 12

// CredentialFingerprint returns a short, non-reversible identifier for a
// credential. The raw credential never leaves the job manager.
func CredentialFingerprint(credential string) string {
	if credential == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}

// CorpusFingerprint identifies a document list by its provider texts.
func CorpusFingerprint(docs []domain.Document) string {
	h, _ := blake2b.New256(nil)
	for _, d := range docs {
		h.Write([]byte(d.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
