package algorand

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"authstamp/internal/domain"
)

// maxNoteBytes is the ledger's transaction note field limit.
const maxNoteBytes = 1024

var errWrongKind = errors.New("note is not a certification record")

// notePayload is the wire form of a CertificationRecord, kept byte-for-byte
// compatible with entries written by earlier clients:
// {"type":"document_certification","hash":...,"name":...,"timestamp":...}.
type notePayload struct {
	Type      string `json:"type"`
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// EncodeNote serializes rec for the transaction note field.
func EncodeNote(rec domain.CertificationRecord) ([]byte, error) {
	if rec.Kind == "" {
		rec.Kind = domain.RecordKind
	}
	if rec.Kind != domain.RecordKind {
		return nil, fmt.Errorf("%w: unexpected record kind %q", domain.ErrInvalidInput, rec.Kind)
	}
	if rec.Fingerprint == "" {
		return nil, fmt.Errorf("%w: empty fingerprint", domain.ErrInvalidInput)
	}
	payload := notePayload{
		Type:      rec.Kind,
		Hash:      string(rec.Fingerprint),
		Name:      rec.DocumentName,
		Timestamp: rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	note, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if len(note) > maxNoteBytes {
		return nil, fmt.Errorf("%w: note payload %d bytes exceeds %d byte limit", domain.ErrInvalidInput, len(note), maxNoteBytes)
	}
	return note, nil
}

// DecodeNote parses a transaction note back into a CertificationRecord.
// Notes that do not parse, or whose kind tag differs from RecordKind,
// return errWrongKind; the caller treats both as "no certification here".
func DecodeNote(note []byte) (domain.CertificationRecord, error) {
	var payload notePayload
	if err := json.Unmarshal(note, &payload); err != nil {
		return domain.CertificationRecord{}, errWrongKind
	}
	if payload.Type != domain.RecordKind {
		return domain.CertificationRecord{}, errWrongKind
	}
	createdAt, err := time.Parse(time.RFC3339, payload.Timestamp)
	if err != nil {
		// Tolerate records written without a parsable timestamp; the field
		// is informational only and not part of verification.
		createdAt = time.Time{}
	}
	return domain.CertificationRecord{
		Kind:         payload.Type,
		Fingerprint:  domain.Fingerprint(payload.Hash),
		DocumentName: payload.Name,
		CreatedAt:    createdAt,
	}, nil
}
