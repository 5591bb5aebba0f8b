package annotate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/skip2/go-qrcode"

	"authstamp/internal/domain"
)

const pdfMediaType = "application/pdf"

const (
	qrSizePixels = 256
	qrWatermark  = "scalefactor:.12 abs, pos:br, off:-24 24, rot:0, op:1"
	footerStyle  = "points:9, pos:bc, off:0 18, rot:0, fillcol:#404040"
)

// Annotator stamps certified PDFs with a verification QR code and a footer
// naming the certificate and its ledger reference.
type Annotator struct {
	verifyBaseURL string
}

func NewAnnotator(verifyBaseURL string) *Annotator {
	return &Annotator{verifyBaseURL: strings.TrimRight(verifyBaseURL, "/")}
}

// Supports reports whether documents of the given media type can be
// annotated. Only PDF is supported; other certified types are returned
// unmodified by callers.
func (a *Annotator) Supports(mediaType string) bool {
	return mediaType == pdfMediaType
}

// VerificationURL is the address encoded into the QR code.
func (a *Annotator) VerificationURL(ref domain.RecordRef) string {
	return fmt.Sprintf("%s/verify?txId=%s", a.verifyBaseURL, ref)
}

func footerLabel(cert domain.Certificate) string {
	return fmt.Sprintf("Certificate ID: %s | Transaction ID: %s", cert.ID, cert.Ref)
}

// Embed returns a copy of doc with the QR code stamped on every page and
// the certificate footer below it. The input document is not modified.
func (a *Annotator) Embed(doc []byte, cert domain.Certificate) ([]byte, error) {
	if cert.Ref == "" {
		return nil, fmt.Errorf("%w: certificate has no ledger reference", domain.ErrInvalidInput)
	}
	png, err := qrcode.Encode(a.VerificationURL(cert.Ref), qrcode.Medium, qrSizePixels)
	if err != nil {
		return nil, fmt.Errorf("encode verification qr: %w", err)
	}

	imageWM, err := api.ImageWatermarkForReader(bytes.NewReader(png), qrWatermark, true, false, pdftypes.POINTS)
	if err != nil {
		return nil, fmt.Errorf("prepare qr watermark: %w", err)
	}
	var stamped bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(doc), &stamped, nil, imageWM, nil); err != nil {
		return nil, fmt.Errorf("stamp qr watermark: %w", err)
	}

	textWM, err := api.TextWatermark(footerLabel(cert), footerStyle, true, false, pdftypes.POINTS)
	if err != nil {
		return nil, fmt.Errorf("prepare footer watermark: %w", err)
	}
	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(stamped.Bytes()), &out, nil, textWM, nil); err != nil {
		return nil, fmt.Errorf("stamp footer watermark: %w", err)
	}
	return out.Bytes(), nil
}
