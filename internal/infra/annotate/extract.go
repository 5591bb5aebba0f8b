package annotate

import (
	"bytes"
	"compress/zlib"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"

	pdfreader "github.com/ledongthuc/pdf"

	"authstamp/internal/domain"
)

// Strategy attempts to recover a record reference from raw document bytes.
// Strategies are best effort: a miss is not an error.
type Strategy interface {
	Name() string
	TryExtract(doc []byte) (domain.RecordRef, bool)
}

// Extractor runs strategies in order and returns the first hit.
type Extractor struct {
	strategies []Strategy
}

func NewExtractor(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// DefaultExtractor covers annotated PDFs (page text, then compressed
// stream objects), QR code images and plain byte content, in that order.
func DefaultExtractor() *Extractor {
	return NewExtractor(PDFTextStrategy{}, PDFStreamStrategy{}, QRImageStrategy{}, RawScanStrategy{})
}

func (e *Extractor) Extract(doc []byte) (domain.RecordRef, bool) {
	for _, s := range e.strategies {
		if ref, ok := s.TryExtract(doc); ok {
			return ref, true
		}
	}
	return "", false
}

// PDFTextStrategy extracts the plain text of a PDF and scans it for a
// reference left by the annotation footer.
type PDFTextStrategy struct{}

func (PDFTextStrategy) Name() string { return "pdf-text" }

func (PDFTextStrategy) TryExtract(doc []byte) (ref domain.RecordRef, ok bool) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			ref, ok = "", false
		}
	}()
	r, err := pdfreader.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return "", false
	}
	text, err := r.GetPlainText()
	if err != nil {
		return "", false
	}
	raw, err := io.ReadAll(text)
	if err != nil {
		return "", false
	}
	return findReference(string(raw))
}

// maxInflatedStreamBytes caps how much a single stream object may expand
// to while scanning.
const maxInflatedStreamBytes = 1 << 26

// PDFStreamStrategy inflates the document's Flate-compressed stream
// objects and scans the decoded bytes. Footers written by content-stream
// rewriters land in compressed form xobjects, where neither the page text
// walk nor a raw scan can see them.
type PDFStreamStrategy struct{}

func (PDFStreamStrategy) Name() string { return "pdf-stream" }

func (PDFStreamStrategy) TryExtract(doc []byte) (domain.RecordRef, bool) {
	rest := doc
	for {
		body, remainder, ok := nextStreamObject(rest)
		if !ok {
			return "", false
		}
		rest = remainder
		if ref, ok := scanInflated(body); ok {
			return ref, true
		}
	}
}

// nextStreamObject returns the body of the first stream ... endstream
// object in doc and the bytes following it.
func nextStreamObject(doc []byte) (body, rest []byte, ok bool) {
	streamKW := []byte("stream")
	endKW := []byte("endstream")
	offset := 0
	for {
		i := bytes.Index(doc[offset:], streamKW)
		if i < 0 {
			return nil, nil, false
		}
		i += offset
		offset = i + len(streamKW)
		// Skip matches that are the tail of an "endstream" keyword.
		if i >= 3 && bytes.Equal(doc[i-3:i], []byte("end")) {
			continue
		}
		body := doc[i+len(streamKW):]
		// The keyword is followed by an EOL before the data.
		if len(body) > 0 && body[0] == '\r' {
			body = body[1:]
		}
		if len(body) > 0 && body[0] == '\n' {
			body = body[1:]
		}
		end := bytes.Index(body, endKW)
		if end < 0 {
			return nil, nil, false
		}
		return body[:end], body[end:], true
	}
}

func scanInflated(body []byte) (domain.RecordRef, bool) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	defer zr.Close()
	inflated, err := io.ReadAll(io.LimitReader(zr, maxInflatedStreamBytes))
	if len(inflated) == 0 && err != nil {
		return "", false
	}
	// A truncated tail still yields scannable prefix bytes.
	return findReference(string(inflated))
}

// QRImageStrategy decodes a QR code from a PNG or JPEG image.
type QRImageStrategy struct{}

func (QRImageStrategy) Name() string { return "qr-image" }

func (QRImageStrategy) TryExtract(doc []byte) (domain.RecordRef, bool) {
	img, _, err := image.Decode(bytes.NewReader(doc))
	if err != nil {
		return "", false
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", false
	}
	return findReference(result.GetText())
}

// RawScanStrategy scans the raw bytes. It catches references embedded in
// uncompressed streams or sidecar text that the other strategies miss.
type RawScanStrategy struct{}

func (RawScanStrategy) Name() string { return "raw-scan" }

func (RawScanStrategy) TryExtract(doc []byte) (domain.RecordRef, bool) {
	return findReference(string(doc))
}
