package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"authstamp/internal/domain"
)

// FlowState is the current phase of a certification flow.
type FlowState string

const (
	StateAwaitingUpload FlowState = "awaiting_upload"
	StateReady          FlowState = "ready"
	StateCertified      FlowState = "certified"
)

type uploadedDocument struct {
	Name        string
	MediaType   string
	Data        []byte
	Fingerprint domain.Fingerprint
}

// CertificationFlow drives one document from upload through ledger
// submission to an annotated copy. Transitions are strictly
// awaiting_upload -> ready -> certified; at most one operation runs at a
// time. Identical bytes certified through two flows yield two independent
// records; there is no deduplication.
type CertificationFlow struct {
	hasher   Hasher
	ledger   Ledger
	session  WalletSession
	policy   UploadPolicy
	embedder Embedder

	mu    sync.Mutex
	state FlowState
	doc   *uploadedDocument
	cert  *domain.Certificate
}

func NewCertificationFlow(hasher Hasher, ledger Ledger, session WalletSession, policy UploadPolicy, embedder Embedder) *CertificationFlow {
	return &CertificationFlow{
		hasher:   hasher,
		ledger:   ledger,
		session:  session,
		policy:   policy,
		embedder: embedder,
		state:    StateAwaitingUpload,
	}
}

func (f *CertificationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fingerprint returns the uploaded document's digest, or "" before upload.
func (f *CertificationFlow) Fingerprint() domain.Fingerprint {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.doc == nil {
		return ""
	}
	return f.doc.Fingerprint
}

// Certificate returns the issued certificate once the flow is certified.
func (f *CertificationFlow) Certificate() (domain.Certificate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cert == nil {
		return domain.Certificate{}, false
	}
	return *f.cert, true
}

// Upload accepts the document, checks it against the upload policy and
// fingerprints it. A policy denial or empty input keeps the flow in
// awaiting_upload.
func (f *CertificationFlow) Upload(ctx context.Context, name, mediaType string, data []byte) (domain.Fingerprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingUpload {
		return "", fmt.Errorf("%w: upload in state %q", domain.ErrFlowState, f.state)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}
	result, err := f.policy.Evaluate(ctx, domain.UploadPolicyInput{
		Name:      name,
		SizeBytes: int64(len(data)),
		MediaType: mediaType,
	})
	if err != nil {
		return "", fmt.Errorf("evaluate upload policy: %w", err)
	}
	if !result.Allow {
		return "", fmt.Errorf("%w: %s", domain.ErrUploadRejected, denyMessage(result))
	}

	fp := f.hasher.Hash(data)
	f.doc = &uploadedDocument{Name: name, MediaType: mediaType, Data: data, Fingerprint: fp}
	f.state = StateReady
	slog.Info("document uploaded", "name", name, "size", len(data), "fingerprint", fp)
	return fp, nil
}

// Certify submits the uploaded document's record. The wallet check runs
// before anything touches the ledger, so a disconnected session costs no
// network calls. Submission failure keeps the flow in ready for a retry
// triggered by the user.
func (f *CertificationFlow) Certify(ctx context.Context) (domain.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateReady {
		return domain.Certificate{}, fmt.Errorf("%w: certify in state %q", domain.ErrFlowState, f.state)
	}
	if !f.session.Connected() {
		return domain.Certificate{}, domain.ErrWalletNotConnected
	}

	rec := domain.CertificationRecord{
		Kind:         domain.RecordKind,
		Fingerprint:  f.doc.Fingerprint,
		DocumentName: f.doc.Name,
		CreatedAt:    time.Now().UTC(),
	}
	ref, err := f.ledger.Submit(ctx, rec)
	if err != nil {
		return domain.Certificate{}, err
	}
	cert := domain.NewCertificate(ref, rec)
	f.cert = &cert
	f.state = StateCertified
	slog.Info("document certified", "ref", ref, "certificate_id", cert.ID)
	return cert, nil
}

// Annotate returns (copy, true) with the certificate stamped in when the
// document's media type supports embedding, and (original, false) when it
// does not. The certificate is valid either way.
func (f *CertificationFlow) Annotate(ctx context.Context) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateCertified {
		return nil, false, fmt.Errorf("%w: annotate in state %q", domain.ErrFlowState, f.state)
	}
	if !f.embedder.Supports(f.doc.MediaType) {
		slog.Debug("annotation skipped", "media_type", f.doc.MediaType)
		return f.doc.Data, false, nil
	}
	out, err := f.embedder.Embed(f.doc.Data, *f.cert)
	if err != nil {
		return nil, false, fmt.Errorf("annotate document: %w", err)
	}
	return out, true, nil
}

func denyMessage(result domain.PolicyResult) string {
	if len(result.Deny) == 0 {
		return "rejected by upload policy"
	}
	d := result.Deny[0]
	if d.Message != "" {
		return d.Message
	}
	return d.Code
}
