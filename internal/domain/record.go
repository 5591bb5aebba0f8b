package domain

import "time"

// RecordKind is the reserved note tag that marks a ledger entry as a
// document certification. Entries carrying any other tag are invisible to
// the verification flow.
const RecordKind = "document_certification"

// CertificateIDLength is the number of leading RecordRef characters used
// as the short human-facing certificate id.
const CertificateIDLength = 8

// Fingerprint is the lowercase hex SHA-256 digest of a document's raw
// bytes. File name and media type are excluded from the digest domain.
type Fingerprint string

// RecordRef is the ledger transaction id returned on submission. It is the
// durable handle for later lookup.
type RecordRef string

// CertificationRecord is the logical payload written to the ledger.
// Once submitted it is immutable and permanent; the ledger enforces this.
type CertificationRecord struct {
	Kind         string      `json:"kind"`
	Fingerprint  Fingerprint `json:"fingerprint"`
	DocumentName string      `json:"document_name"`
	CreatedAt    time.Time   `json:"created_at"`
}

// LedgerRecord pairs a fetched CertificationRecord with the transaction
// metadata the ledger reported for it.
type LedgerRecord struct {
	Record         CertificationRecord `json:"record"`
	Ref            RecordRef           `json:"ref"`
	Sender         string              `json:"sender"`
	ConfirmedRound uint64              `json:"confirmed_round"`
	ConfirmedAt    time.Time           `json:"confirmed_at"`
}

// Certificate is produced in memory at certification time. ID is a short
// prefix of Ref for display and watermark text.
type Certificate struct {
	Ref    RecordRef           `json:"ref"`
	ID     string              `json:"id"`
	Record CertificationRecord `json:"record"`
}

// NewCertificate derives the Certificate for a submitted record.
func NewCertificate(ref RecordRef, rec CertificationRecord) Certificate {
	id := string(ref)
	if len(id) > CertificateIDLength {
		id = id[:CertificateIDLength]
	}
	return Certificate{Ref: ref, ID: id, Record: rec}
}
