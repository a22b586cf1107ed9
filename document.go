package docsign

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vaultsandbox/docsign/internal/crypto"
)

// SignRequest is a document to be signed.
type SignRequest struct {
	// Document is hashed and signed byte for byte.
	Document []byte
	// Sender is the identity of the signing party. Required.
	Sender string
	// Receiver is the identity of the intended recipient. Required.
	Receiver string
	// Password, when set, seals the generated private key in
	// SignedDocument.SealedPrivateKey.
	Password []byte
}

func (r *SignRequest) validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	var problems []string
	if strings.TrimSpace(r.Sender) == "" {
		problems = append(problems, "sender is required")
	}
	if strings.TrimSpace(r.Receiver) == "" {
		problems = append(problems, "receiver is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, ", "))
	}
	return nil
}

// SignedDocument is the result of SignDocument.
type SignedDocument struct {
	// Package is handed to the document store.
	Package *SignaturePackage
	// PublicKey is the "PUBLIC KEY" text envelope needed to verify Package.
	PublicKey string
	// SealedPrivateKey is the password-sealed private key, or empty when the
	// request carried no password.
	SealedPrivateKey string
	// KeyPair is the freshly generated key pair. The signer does not keep it.
	KeyPair *KeyPair
}

// SignDocument generates a fresh key pair for the document, signs it and
// bundles the result into a SignaturePackage.
func (s *Signer) SignDocument(ctx context.Context, req *SignRequest) (*SignedDocument, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	id, err := s.newDocumentID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document id: %w", err)
	}

	kp, err := s.GenerateKeyPair(ctx)
	if err != nil {
		return nil, err
	}

	digest := s.cfg.hash.Sum(req.Document)
	sig, err := s.signDigest(digest, kp.PrivateKey())
	if err != nil {
		s.logger.Error().Err(err).Str("document_id", id).Msg("Failed to sign document")
		s.emit(ctx, &AuditEvent{
			EventType:  EventSign,
			DocumentID: id,
			Sender:     req.Sender,
			Receiver:   req.Receiver,
			Result:     ResultFailure,
			Reason:     err.Error(),
		})
		return nil, err
	}

	pubText, err := crypto.MarshalPublicKey(kp.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}

	signed := &SignedDocument{
		Package: &SignaturePackage{
			Version:         PackageVersion,
			DocumentID:      id,
			DocumentContent: crypto.ToBase64(req.Document),
			DocumentHash:    crypto.ToBase64(digest),
			Signature:       crypto.ToBase64(sig),
			Sender:          req.Sender,
			Receiver:        req.Receiver,
			Timestamp:       s.cfg.clock().UTC(),
			Algorithm:       AlgorithmRSAPSS,
			HashAlgorithm:   s.cfg.hash.String(),
		},
		PublicKey: pubText,
		KeyPair:   kp,
	}

	if len(req.Password) > 0 {
		sealed, err := s.SealPrivateKey(ctx, kp.PrivateKey(), req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to seal private key: %w", err)
		}
		signed.SealedPrivateKey = sealed
	}

	s.logger.Info().
		Str("document_id", id).
		Int("size", len(req.Document)).
		Str("hash", s.cfg.hash.String()).
		Msg("Signed document")
	s.emit(ctx, &AuditEvent{
		EventType:  EventSign,
		DocumentID: id,
		Sender:     req.Sender,
		Receiver:   req.Receiver,
		Result:     ResultSuccess,
	})

	return signed, nil
}

func (s *Signer) newDocumentID() (string, error) {
	if s.cfg.rand == nil {
		id, err := uuid.NewRandom()
		return id.String(), err
	}
	id, err := uuid.NewRandomFromReader(s.cfg.rand)
	return id.String(), err
}

// VerifyPackage checks a stored package against the signer's public key
// text. The document is rehashed with the package's hash algorithm and must
// match the recorded digest before the signature is checked.
func (s *Signer) VerifyPackage(ctx context.Context, pkg *SignaturePackage, publicKey string) VerificationResult {
	result := s.verifyPackage(pkg, publicKey)

	event := &AuditEvent{EventType: EventVerify, Result: ResultSuccess, Reason: result.Reason}
	if pkg != nil {
		event.DocumentID = pkg.DocumentID
		event.Sender = pkg.Sender
		event.Receiver = pkg.Receiver
	}
	if !result.Valid {
		event.Result = ResultFailure
		s.logger.Warn().Str("document_id", event.DocumentID).Str("reason", result.Reason).Msg("Signature verification failed")
	} else {
		s.logger.Info().Str("document_id", event.DocumentID).Msg("Signature verified")
	}
	s.emit(ctx, event)

	return result
}

func (s *Signer) verifyPackage(pkg *SignaturePackage, publicKey string) VerificationResult {
	if pkg == nil {
		return invalid(ReasonMalformedPackage)
	}
	d, err := pkg.decode()
	if err != nil {
		return invalid(ReasonMalformedPackage)
	}

	pub, err := crypto.ParsePublicKey(publicKey)
	if err != nil {
		return invalid(ReasonMalformedKey)
	}

	digest := d.hash.Sum(d.document)
	if subtle.ConstantTimeCompare(digest, d.digest) != 1 {
		return invalid(ReasonHashMismatch)
	}

	result := s.verifyDigest(d.hash, digest, d.signature, pub)
	if !result.Valid {
		return result
	}

	result.Details = &VerificationDetails{
		DocumentID:    pkg.DocumentID,
		Sender:        pkg.Sender,
		Receiver:      pkg.Receiver,
		Timestamp:     pkg.Timestamp,
		Algorithm:     pkg.Algorithm,
		HashAlgorithm: pkg.HashAlgorithm,
	}
	return result
}
