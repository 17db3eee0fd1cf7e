package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		expect      Format
	}{
		{
			name:        "declared pdf",
			contentType: "application/pdf",
			expect:      FormatPDF,
		},
		{
			name:        "generic binary stream defaults to pdf",
			contentType: "application/octet-stream",
			expect:      FormatPDF,
		},
		{
			name:        "missing content type defaults to pdf",
			contentType: "",
			expect:      FormatPDF,
		},
		{
			name:        "docx",
			contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			expect:      FormatWord,
		},
		{
			name:        "legacy msword",
			contentType: "application/msword",
			expect:      FormatWord,
		},
		{
			name:        "image is unknown",
			contentType: "image/png",
			expect:      FormatUnknown,
		},
		{
			name:        "text is unknown",
			contentType: "text/html",
			expect:      FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.contentType); got != tt.expect {
				t.Fatalf("expected format %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestSubtype(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		expect      string
	}{
		{contentType: "image/png", expect: "png"},
		{contentType: "text/html; charset=utf-8", expect: "html"},
		{contentType: "weird", expect: ""},
		{contentType: "", expect: ""},
	}

	for _, tt := range tests {
		if got := Subtype(tt.contentType); got != tt.expect {
			t.Fatalf("Subtype(%q): expected %q, got %q", tt.contentType, tt.expect, got)
		}
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating archive entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing archive entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}

	return buf.Bytes()
}

func TestWordExtract(t *testing.T) {
	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Experienced engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>Go</w:t><w:tab/><w:t>Postgres</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := NewWord().Extract(buildDocx(t, document))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(text, "Experienced engineer") {
		t.Fatalf("expected first paragraph in output, got %q", text)
	}
	if !strings.Contains(text, "Go\tPostgres") {
		t.Fatalf("expected tab between runs, got %q", text)
	}
	if strings.Count(text, "\n") < 2 {
		t.Fatalf("expected newline per paragraph, got %q", text)
	}
}

func TestWordExtractRejectsMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if _, err := w.Create("unrelated.txt"); err != nil {
		t.Fatalf("creating archive entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}

	if _, err := NewWord().Extract(buf.Bytes()); err == nil {
		t.Fatal("expected error for archive without document part")
	}
}

func TestWordExtractRejectsGarbage(t *testing.T) {
	if _, err := NewWord().Extract([]byte("not a zip archive")); err == nil {
		t.Fatal("expected error for non-zip payload")
	}
}

func TestPDFExtractRejectsGarbage(t *testing.T) {
	if _, err := NewPDF().Extract([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf payload")
	}
}
