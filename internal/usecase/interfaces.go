package usecase

import (
	"context"
	"time"

	"authstamp/internal/domain"
)

// Hasher computes document fingerprints.
type Hasher interface {
	Hash(data []byte) domain.Fingerprint
}

// Ledger submits certification records and resolves references back into
// confirmed records.
type Ledger interface {
	Submit(ctx context.Context, rec domain.CertificationRecord) (domain.RecordRef, error)
	Fetch(ctx context.Context, ref domain.RecordRef) (*domain.LedgerRecord, error)
}

// WalletSession exposes the connection state the workflows gate on.
type WalletSession interface {
	Connected() bool
	Address() string
}

// UploadPolicy decides whether an uploaded document is accepted.
type UploadPolicy interface {
	Evaluate(ctx context.Context, in domain.UploadPolicyInput) (domain.PolicyResult, error)
}

// Embedder stamps certificates into documents of supported media types.
type Embedder interface {
	Supports(mediaType string) bool
	Embed(doc []byte, cert domain.Certificate) ([]byte, error)
}

// ReferenceExtractor recovers a record reference from document bytes.
type ReferenceExtractor interface {
	Extract(doc []byte) (domain.RecordRef, bool)
}

// RecordCache is a read-through cache for confirmed ledger records.
type RecordCache interface {
	Get(ctx context.Context, ref domain.RecordRef) (*domain.LedgerRecord, bool, error)
	Put(ctx context.Context, ref domain.RecordRef, value domain.LedgerRecord, ttl time.Duration) error
}
