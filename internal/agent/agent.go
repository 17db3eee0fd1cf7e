// Package agent obtains AI suitability assessments for applications. The
// scoring collaborator returns free-form text with an embedded score; the
// response format is not contractually fixed, so the rating parser is a
// best-effort adapter kept separate from the providers.
package agent

import (
	"context"
	"fmt"
)

// Scorer produces a free-form assessment of a resume against a job
// description. An error means no usable response was obtained.
type Scorer interface {
	Score(ctx context.Context, jobDescription, resumeText string) (string, error)
}

func buildPrompt(jobDescription, resumeText string) string {
	return fmt.Sprintf("Job Description: %s\n\nResume Text: %s", jobDescription, resumeText)
}
