package annotate

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/skip2/go-qrcode"

	"authstamp/internal/domain"
)

const testRef = domain.RecordRef("H2NNQBGOF5RJ7QQAUFWQ5TFKDWYZ5CRVMSYZMNC2D3QVQDR4VEQQ")

func TestFindReference(t *testing.T) {
	cases := []struct {
		name string
		text string
		want domain.RecordRef
		ok   bool
	}{
		{"labeled", "Certificate ID: H2NNQBGO | Transaction ID: " + string(testRef), testRef, true},
		{"query param", "https://authstamp.app/verify?txId=" + string(testRef), testRef, true},
		{"bare", "anchored under " + string(testRef) + " last week", testRef, true},
		{"lowercase rejected", "txId=" + "h2nnqbgof5rj7qqaufwq5tfkdwyz5crvmsyzmnc2d3qvqdr4veqq", "", false},
		{"too short", "txId=ABCDEFG234567", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := findReference(tc.text)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("findReference(%q) = (%q, %v), want (%q, %v)", tc.text, got, ok, tc.want, tc.ok)
			}
		})
	}
}

// buildTextPDF assembles a minimal single-page PDF with an uncompressed
// content stream, computing xref offsets as it goes.
func buildTextPDF(text string) []byte {
	var buf bytes.Buffer
	offsets := make([]int, 6)
	write := func(n int, s string) {
		offsets[n] = buf.Len()
		buf.WriteString(s)
	}
	buf.WriteString("%PDF-1.4\n")
	write(1, "1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	write(2, "2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	write(3, "3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n")
	write(4, "4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	write(5, fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream))
	xref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func TestPDFTextStrategy(t *testing.T) {
	doc := buildTextPDF("Certificate ID: H2NNQBGO | Transaction ID: " + string(testRef))
	ref, ok := PDFTextStrategy{}.TryExtract(doc)
	if !ok || ref != testRef {
		t.Fatalf("TryExtract = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
}

func TestPDFTextStrategyRejectsGarbage(t *testing.T) {
	if _, ok := (PDFTextStrategy{}).TryExtract([]byte("%PDF-1.4 truncated")); ok {
		t.Fatal("expected miss on malformed pdf")
	}
}

// deflate compresses data the way a FlateDecode stream object carries it.
func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("compress stream: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	return buf.Bytes()
}

func TestPDFStreamStrategy(t *testing.T) {
	content := []byte("BT (Certificate ID: H2NNQBGO | Transaction ID: " + string(testRef) + ") Tj ET")
	compressed := deflate(t, content)
	var doc bytes.Buffer
	doc.WriteString("%PDF-1.4\n")
	doc.WriteString("7 0 obj\n<< /Length " + fmt.Sprint(len(compressed)) + " /Filter /FlateDecode >>\nstream\n")
	doc.Write(compressed)
	doc.WriteString("\nendstream\nendobj\n%%EOF\n")

	ref, ok := PDFStreamStrategy{}.TryExtract(doc.Bytes())
	if !ok || ref != testRef {
		t.Fatalf("TryExtract = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
}

func TestPDFStreamStrategySkipsUncompressedStreams(t *testing.T) {
	// First stream is plain text, the second carries the compressed ref.
	compressed := deflate(t, []byte("txId="+string(testRef)))
	var doc bytes.Buffer
	doc.WriteString("1 0 obj\n<< /Length 11 >>\nstream\nplain bytes\nendstream\nendobj\n")
	doc.WriteString("2 0 obj\n<< /Length " + fmt.Sprint(len(compressed)) + " /Filter /FlateDecode >>\nstream\n")
	doc.Write(compressed)
	doc.WriteString("\nendstream\nendobj\n")

	ref, ok := PDFStreamStrategy{}.TryExtract(doc.Bytes())
	if !ok || ref != testRef {
		t.Fatalf("TryExtract = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
}

func TestPDFStreamStrategyNoStreams(t *testing.T) {
	if _, ok := (PDFStreamStrategy{}).TryExtract([]byte("%PDF-1.4 no streams here")); ok {
		t.Fatal("expected miss on a document without stream objects")
	}
}

func TestQRImageStrategyRoundTrip(t *testing.T) {
	url := "https://authstamp.app/verify?txId=" + string(testRef)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		t.Fatalf("encode qr: %v", err)
	}
	ref, ok := QRImageStrategy{}.TryExtract(png)
	if !ok || ref != testRef {
		t.Fatalf("TryExtract = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
}

func TestQRImageStrategyRejectsNonImage(t *testing.T) {
	if _, ok := (QRImageStrategy{}).TryExtract([]byte("not an image")); ok {
		t.Fatal("expected miss on non-image input")
	}
}

func TestRawScanStrategy(t *testing.T) {
	doc := []byte("prefix txId=" + string(testRef) + " suffix")
	ref, ok := RawScanStrategy{}.TryExtract(doc)
	if !ok || ref != testRef {
		t.Fatalf("TryExtract = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
}

type stubStrategy struct {
	ref   domain.RecordRef
	ok    bool
	calls *int
}

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) TryExtract([]byte) (domain.RecordRef, bool) {
	if s.calls != nil {
		*s.calls++
	}
	return s.ref, s.ok
}

func TestExtractorFirstHitWins(t *testing.T) {
	var secondCalls int
	e := NewExtractor(
		stubStrategy{ref: testRef, ok: true},
		stubStrategy{ref: "WRONG", ok: true, calls: &secondCalls},
	)
	ref, ok := e.Extract([]byte("doc"))
	if !ok || ref != testRef {
		t.Fatalf("Extract = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
	if secondCalls != 0 {
		t.Fatalf("second strategy called %d times after first hit", secondCalls)
	}
}

func TestExtractorFallsThrough(t *testing.T) {
	e := NewExtractor(stubStrategy{}, stubStrategy{ref: testRef, ok: true})
	ref, ok := e.Extract([]byte("doc"))
	if !ok || ref != testRef {
		t.Fatalf("Extract = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
}

func TestExtractorNoHit(t *testing.T) {
	if ref, ok := DefaultExtractor().Extract([]byte("nothing to see")); ok {
		t.Fatalf("expected miss, got %q", ref)
	}
}

func TestAnnotatorSupports(t *testing.T) {
	a := NewAnnotator("https://authstamp.app")
	if !a.Supports("application/pdf") {
		t.Fatal("pdf should be supported")
	}
	for _, mt := range []string{
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"image/png",
		"",
	} {
		if a.Supports(mt) {
			t.Fatalf("%q should not be supported", mt)
		}
	}
}

func TestAnnotatorVerificationURL(t *testing.T) {
	a := NewAnnotator("https://authstamp.app/")
	want := "https://authstamp.app/verify?txId=" + string(testRef)
	if got := a.VerificationURL(testRef); got != want {
		t.Fatalf("VerificationURL = %q, want %q", got, want)
	}
}

func TestFooterLabel(t *testing.T) {
	cert := domain.NewCertificate(testRef, domain.CertificationRecord{})
	want := "Certificate ID: H2NNQBGO | Transaction ID: " + string(testRef)
	if got := footerLabel(cert); got != want {
		t.Fatalf("footerLabel = %q, want %q", got, want)
	}
}

func TestEmbedRejectsMissingReference(t *testing.T) {
	a := NewAnnotator("https://authstamp.app")
	if _, err := a.Embed(buildTextPDF("doc"), domain.Certificate{}); err == nil {
		t.Fatal("expected error for certificate without reference")
	}
}

func TestEmbedStampsFooter(t *testing.T) {
	a := NewAnnotator("https://authstamp.app")
	cert := domain.NewCertificate(testRef, domain.CertificationRecord{})
	in := buildTextPDF("original content")
	out, err := a.Embed(in, cert)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("annotated output is not a pdf")
	}
	if bytes.Equal(out, in) {
		t.Fatal("annotated document should differ from the input")
	}
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	a := NewAnnotator("https://authstamp.app")
	cert := domain.NewCertificate(testRef, domain.CertificationRecord{})
	out, err := a.Embed(buildTextPDF("original content"), cert)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	ref, ok := DefaultExtractor().Extract(out)
	if !ok || ref != testRef {
		t.Fatalf("extract from annotated pdf = (%q, %v), want (%q, true)", ref, ok, testRef)
	}
}
