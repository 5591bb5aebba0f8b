package domain

// VerificationStatus is the outcome of the verification workflow. These
// are result values, not errors; callers must distinguish all four in
// user-facing output.
type VerificationStatus string

const (
	// StatusVerified: the reference resolves to a certification record and,
	// when a file was supplied, its current fingerprint matches the stored one.
	StatusVerified VerificationStatus = "verified"
	// StatusNotCertified: the reference does not resolve to a valid
	// certification record (missing, undecodable, or wrong kind tag).
	StatusNotCertified VerificationStatus = "not_certified"
	// StatusNoReference: the document carries no recoverable reference and
	// none was supplied. Distinct from StatusNotCertified: the document was
	// never annotated, as opposed to pointing at an invalid record.
	StatusNoReference VerificationStatus = "no_reference_found"
	// StatusTampered: the reference resolves to a real certification, but
	// for different content than the file presented.
	StatusTampered VerificationStatus = "tampered"
)

// VerificationReport is the full result of a verification run.
// Record and the ledger metadata fields are populated for StatusVerified
// and StatusTampered; Fingerprint is the uploaded file's current digest
// when a file was part of the request.
type VerificationReport struct {
	Status         VerificationStatus   `json:"status"`
	Ref            RecordRef            `json:"ref,omitempty"`
	Fingerprint    Fingerprint          `json:"fingerprint,omitempty"`
	Record         *CertificationRecord `json:"record,omitempty"`
	Sender         string               `json:"sender,omitempty"`
	ConfirmedRound uint64               `json:"confirmed_round,omitempty"`
	ConfirmedAt    string               `json:"confirmed_at,omitempty"`
}
