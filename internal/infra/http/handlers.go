package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"authstamp/internal/domain"
	"authstamp/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type fingerprintResponse struct {
	Name        string             `json:"name"`
	SizeBytes   int64              `json:"size_bytes"`
	Fingerprint domain.Fingerprint `json:"fingerprint"`
}

type certificateResponse struct {
	Ref domain.RecordRef `json:"ref"`
	ID  string           `json:"id"`
}

type recordResponse struct {
	Kind         string             `json:"kind"`
	Fingerprint  domain.Fingerprint `json:"fingerprint"`
	DocumentName string             `json:"document_name"`
	CreatedAt    string             `json:"created_at"`
}

type certifyResponse struct {
	Certificate certificateResponse `json:"certificate"`
	Record      recordResponse      `json:"record"`
	VerifyURL   string              `json:"verify_url"`
	ExplorerURL string              `json:"explorer_url"`
}

type walletStatusResponse struct {
	Connected         bool              `json:"connected"`
	Address           string            `json:"address,omitempty"`
	Kind              domain.WalletKind `json:"kind,omitempty"`
	BalanceMicroAlgos uint64            `json:"balance_microalgos"`
}

type upload struct {
	Name      string
	MediaType string
	Data      []byte
}

func (s *Server) readUpload(c *gin.Context) (*upload, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field", domain.ErrInvalidInput)
	}
	if s.cfg.MaxUploadBytes > 0 && file.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrUploadRejected, s.cfg.MaxUploadBytes)
	}
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	mediaType := file.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(file.Filename)); byExt != "" {
			mediaType, _, _ = mime.ParseMediaType(byExt)
		}
	}
	return &upload{Name: filepath.Base(file.Filename), MediaType: mediaType, Data: data}, nil
}

func (s *Server) handleFingerprint(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, fingerprintResponse{
		Name:        up.Name,
		SizeBytes:   int64(len(up.Data)),
		Fingerprint: s.hasher.Hash(up.Data),
	})
}

// handleCertify runs the full flow for one request: policy check, hash,
// ledger submission. Annotation stays a separate call so clients that only
// want the certificate skip the PDF rewrite.
func (s *Server) handleCertify(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	flow := usecase.NewCertificationFlow(s.hasher, s.ledger, s.wallet, s.policy, s.annotator)
	if _, err := flow.Upload(c.Request.Context(), up.Name, up.MediaType, up.Data); err != nil {
		writeError(c, err)
		return
	}
	cert, err := flow.Certify(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, certifyResponse{
		Certificate: certificateResponse{Ref: cert.Ref, ID: cert.ID},
		Record: recordResponse{
			Kind:         cert.Record.Kind,
			Fingerprint:  cert.Record.Fingerprint,
			DocumentName: cert.Record.DocumentName,
			CreatedAt:    cert.Record.CreatedAt.Format(time.RFC3339),
		},
		VerifyURL:   s.verifyURL(cert.Ref),
		ExplorerURL: s.cfg.ExplorerTxURL + string(cert.Ref),
	})
}

// handleAnnotate stamps an already-certified document. The reference must
// resolve on the ledger before anything is embedded.
func (s *Server) handleAnnotate(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	ref := domain.RecordRef(strings.TrimSpace(c.PostForm("txId")))
	if ref == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "txId is required")
		return
	}
	if !s.annotator.Supports(up.MediaType) {
		writeErrorCode(c, http.StatusBadRequest, "ANNOTATION_UNSUPPORTED", "only pdf documents can be annotated")
		return
	}
	rec, err := s.ledger.Fetch(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := s.annotator.Embed(up.Data, domain.NewCertificate(ref, rec.Record))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "certified_"+up.Name))
	c.Data(http.StatusOK, "application/pdf", out)
}

func (s *Server) handleVerifyByRef(c *gin.Context) {
	ref := domain.RecordRef(strings.TrimSpace(c.Query("txId")))
	if ref == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "txId is required")
		return
	}
	report, err := s.verifyUC.Execute(c.Request.Context(), usecase.VerifyRequest{Ref: ref})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleVerifyDocument(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		writeError(c, err)
		return
	}
	req := usecase.VerifyRequest{
		Ref:       domain.RecordRef(strings.TrimSpace(c.PostForm("txId"))),
		Document:  up.Data,
		HasDoc:    true,
		MediaType: up.MediaType,
	}
	report, err := s.verifyUC.Execute(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleWalletStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.walletStatus())
}

func (s *Server) handleWalletConnect(c *gin.Context) {
	var req struct {
		Kind domain.WalletKind `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if req.Kind == "" {
		req.Kind = domain.WalletKind(s.cfg.WalletProvider)
	}
	if err := s.wallet.Connect(c.Request.Context(), req.Kind); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.walletStatus())
}

func (s *Server) handleWalletDisconnect(c *gin.Context) {
	s.wallet.Disconnect(c.Request.Context())
	c.JSON(http.StatusOK, s.walletStatus())
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) walletStatus() walletStatusResponse {
	out := walletStatusResponse{Connected: s.wallet.Connected()}
	if out.Connected {
		out.Address = s.wallet.Address()
		out.Kind = s.wallet.Kind()
		out.BalanceMicroAlgos = s.wallet.Balance()
	}
	return out
}

func (s *Server) verifyURL(ref domain.RecordRef) string {
	return fmt.Sprintf("%s/verify?txId=%s", strings.TrimRight(s.cfg.VerifyBaseURL, "/"), ref)
}

func writeError(c *gin.Context, err error) {
	var funds *domain.InsufficientFundsError
	if errors.As(err, &funds) {
		c.JSON(http.StatusPaymentRequired, errorResponse{
			Code:    "INSUFFICIENT_FUNDS",
			Message: err.Error(),
			Details: map[string]any{"balance": funds.Balance, "required": funds.Required},
		})
		return
	}

	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrUploadRejected):
		status, code = http.StatusBadRequest, "UPLOAD_REJECTED"
	case errors.Is(err, domain.ErrFlowState):
		status, code = http.StatusConflict, "FLOW_STATE"
	case errors.Is(err, domain.ErrWalletNotConnected):
		status, code = http.StatusConflict, "WALLET_NOT_CONNECTED"
	case errors.Is(err, domain.ErrUserCancelled):
		status, code = http.StatusConflict, "USER_CANCELLED"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrProviderUnavailable):
		status, code = http.StatusBadGateway, "PROVIDER_UNAVAILABLE"
	case errors.Is(err, domain.ErrSigning):
		status, code = http.StatusBadGateway, "SIGNING_FAILED"
	case errors.Is(err, domain.ErrSubmission):
		status, code = http.StatusBadGateway, "SUBMISSION_FAILED"
	case errors.Is(err, domain.ErrLookup):
		status, code = http.StatusBadGateway, "LOOKUP_FAILED"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}
