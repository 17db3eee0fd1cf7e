package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDF extracts plain text from PDF documents. The document is validated
// first so that truncated or non-PDF payloads fail as parse errors instead
// of producing garbage text.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

func (e *PDF) Extract(data []byte) (string, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	// Relaxed validation: resumes come from arbitrary generators.
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	ctx, err := pdfapi.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	if err := pdfapi.ValidateContext(ctx); err != nil {
		return "", fmt.Errorf("validate pdf: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	text, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}
