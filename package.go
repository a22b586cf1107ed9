package docsign

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vaultsandbox/docsign/internal/crypto"
)

// PackageVersion is the current signature package format version.
const PackageVersion = 1

// AlgorithmRSAPSS is the only signature algorithm produced and accepted.
const AlgorithmRSAPSS = crypto.AlgorithmRSAPSS

// SignaturePackage is what a document store keeps for a signed document.
// Binary fields are standard base64. The document bytes are stored as-is so
// that verification hashes exactly what was signed.
type SignaturePackage struct {
	// Version is the package format version. MUST be 1.
	Version int `json:"version"`
	// DocumentID identifies the document (UUID).
	DocumentID string `json:"documentId"`
	// DocumentContent is the signed document bytes.
	DocumentContent string `json:"documentContent"`
	// DocumentHash is the digest of the document bytes.
	DocumentHash string `json:"documentHash"`
	// Signature is the RSA-PSS signature, exactly as long as the modulus.
	Signature string `json:"signature"`
	// Sender is the identity of the signing party.
	Sender string `json:"sender"`
	// Receiver is the identity of the intended recipient.
	Receiver string `json:"receiver"`
	// Timestamp is when the document was signed (UTC).
	Timestamp time.Time `json:"timestamp"`
	// Algorithm MUST be "RSA-PSS".
	Algorithm string `json:"algorithm"`
	// HashAlgorithm names the digest, e.g. "SHA3-256".
	HashAlgorithm string `json:"hashAlgorithm"`
}

// Validate checks that every field is present and decodable. It does not
// check the signature.
func (p *SignaturePackage) Validate() error {
	if p.Version != PackageVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidPackage, p.Version, PackageVersion)
	}

	if p.DocumentID == "" {
		return fmt.Errorf("%w: documentId is required", ErrInvalidPackage)
	}
	if _, err := uuid.Parse(p.DocumentID); err != nil {
		return fmt.Errorf("%w: documentId is not a UUID", ErrInvalidPackage)
	}

	if p.Sender == "" {
		return fmt.Errorf("%w: sender is required", ErrInvalidPackage)
	}
	if p.Receiver == "" {
		return fmt.Errorf("%w: receiver is required", ErrInvalidPackage)
	}
	if p.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidPackage)
	}

	if p.Algorithm != AlgorithmRSAPSS {
		return fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidPackage, p.Algorithm)
	}
	h, err := crypto.ParseHash(p.HashAlgorithm)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}

	if _, err := crypto.DecodeBase64(p.DocumentContent); err != nil {
		return fmt.Errorf("%w: invalid documentContent encoding", ErrInvalidPackage)
	}
	digest, err := crypto.DecodeBase64(p.DocumentHash)
	if err != nil {
		return fmt.Errorf("%w: invalid documentHash encoding", ErrInvalidPackage)
	}
	if len(digest) != h.Size() {
		return fmt.Errorf("%w: documentHash size %d, expected %d", ErrInvalidPackage, len(digest), h.Size())
	}
	sig, err := crypto.DecodeBase64(p.Signature)
	if err != nil {
		return fmt.Errorf("%w: invalid signature encoding", ErrInvalidPackage)
	}
	if len(sig) == 0 {
		return fmt.Errorf("%w: signature is required", ErrInvalidPackage)
	}

	return nil
}

// Document returns the decoded document bytes.
func (p *SignaturePackage) Document() ([]byte, error) {
	doc, err := crypto.DecodeBase64(p.DocumentContent)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid documentContent encoding", ErrInvalidPackage)
	}
	return doc, nil
}

// Marshal returns the JSON form of p.
func (p *SignaturePackage) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// ParsePackage decodes and validates a JSON signature package. Unknown
// fields are rejected.
func ParsePackage(data []byte) (*SignaturePackage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p SignaturePackage
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// decoded holds the binary fields of a validated package.
type decoded struct {
	hash      Hash
	document  []byte
	digest    []byte
	signature []byte
}

func (p *SignaturePackage) decode() (*decoded, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	// Validate already checked every field below.
	h, _ := crypto.ParseHash(p.HashAlgorithm)
	doc, _ := crypto.DecodeBase64(p.DocumentContent)
	digest, _ := crypto.DecodeBase64(p.DocumentHash)
	sig, _ := crypto.DecodeBase64(p.Signature)

	return &decoded{hash: h, document: doc, digest: digest, signature: sig}, nil
}
