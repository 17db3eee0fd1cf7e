// Package extract turns downloaded resume artifacts into plain text. The
// declared content type picks the extractor; unknown formats are reported
// back to the caller so the pipeline can record a terminal failure without
// running any extractor.
package extract

import "strings"

// Format is the document family an artifact is routed to.
type Format int

const (
	// FormatPDF covers declared PDF types plus unspecified or generic
	// binary streams, which default to the PDF extractor.
	FormatPDF Format = iota
	// FormatWord covers the word-processing family (docx, legacy msword).
	FormatWord
	// FormatUnknown is any other declared type; never extracted.
	FormatUnknown
)

// TextExtractor extracts plain text from a document of one family.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Classify routes a declared content type to a document family.
func Classify(contentType string) Format {
	ct := strings.ToLower(contentType)

	switch {
	case strings.Contains(ct, "wordprocessingml"),
		strings.Contains(ct, "msword"),
		strings.Contains(ct, "officedocument"):
		return FormatWord
	case ct == "", strings.Contains(ct, "pdf"), strings.Contains(ct, "octet-stream"):
		return FormatPDF
	default:
		return FormatUnknown
	}
}

// Subtype returns the subtype portion of a content type ("image/png" ->
// "png"), with any media type parameters stripped. Empty when the content
// type has no subtype.
func Subtype(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}

	_, subtype, found := strings.Cut(strings.TrimSpace(contentType), "/")
	if !found {
		return ""
	}

	return subtype
}
