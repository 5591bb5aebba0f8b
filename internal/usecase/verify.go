package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"authstamp/internal/domain"
)

// VerifyRequest carries either a reference, a document, or both. With
// both present the reference recovered from the document wins over the
// supplied one; the supplied value may be a stale or mistyped copy while
// the embedded one was written at certification time.
type VerifyRequest struct {
	Ref       domain.RecordRef
	Document  []byte
	HasDoc    bool
	MediaType string
}

// Verify resolves references against the ledger and compares stored
// fingerprints with freshly computed ones. It is stateless; every call is
// independent.
type Verify struct {
	hasher    Hasher
	ledger    Ledger
	extractor ReferenceExtractor
	cache     RecordCache
	cacheTTL  time.Duration
}

func NewVerify(hasher Hasher, ledger Ledger, extractor ReferenceExtractor, cache RecordCache, cacheTTL time.Duration) *Verify {
	return &Verify{hasher: hasher, ledger: ledger, extractor: extractor, cache: cache, cacheTTL: cacheTTL}
}

// Execute runs the verification workflow. The four statuses are result
// values; an error return means the workflow itself could not complete
// (bad request or ledger transport failure).
func (v *Verify) Execute(ctx context.Context, req VerifyRequest) (domain.VerificationReport, error) {
	ref := req.Ref
	var fp domain.Fingerprint
	if req.HasDoc {
		fp = v.hasher.Hash(req.Document)
		if extracted, ok := v.extractor.Extract(req.Document); ok {
			if ref != "" && ref != extracted {
				slog.Debug("supplied reference overridden by embedded one",
					"supplied", ref, "embedded", extracted)
			}
			ref = extracted
		}
	}
	if ref == "" {
		if !req.HasDoc {
			return domain.VerificationReport{}, fmt.Errorf("%w: neither reference nor document supplied", domain.ErrInvalidInput)
		}
		return domain.VerificationReport{Status: domain.StatusNoReference, Fingerprint: fp}, nil
	}

	rec, err := v.fetch(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.VerificationReport{Status: domain.StatusNotCertified, Ref: ref, Fingerprint: fp}, nil
		}
		return domain.VerificationReport{}, err
	}

	report := domain.VerificationReport{
		Status:         domain.StatusVerified,
		Ref:            ref,
		Fingerprint:    fp,
		Record:         &rec.Record,
		Sender:         rec.Sender,
		ConfirmedRound: rec.ConfirmedRound,
		ConfirmedAt:    rec.ConfirmedAt.UTC().Format(time.RFC3339),
	}
	if req.HasDoc && fp != rec.Record.Fingerprint {
		report.Status = domain.StatusTampered
	}
	return report, nil
}

// fetch consults the cache before the ledger. Confirmed records are
// immutable, so a hit never needs revalidation; a miss caused by
// confirmation latency must stay a miss, so ErrNotFound is not cached.
func (v *Verify) fetch(ctx context.Context, ref domain.RecordRef) (*domain.LedgerRecord, error) {
	if v.cache != nil {
		if rec, ok, err := v.cache.Get(ctx, ref); err != nil {
			slog.Warn("record cache read", "ref", ref, "error", err)
		} else if ok {
			return rec, nil
		}
	}
	rec, err := v.ledger.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if v.cache != nil {
		if err := v.cache.Put(ctx, ref, *rec, v.cacheTTL); err != nil {
			slog.Warn("record cache write", "ref", ref, "error", err)
		}
	}
	return rec, nil
}
