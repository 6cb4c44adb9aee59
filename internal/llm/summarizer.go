package llm

import (
	"context"
	"fmt"

	"senseact/internal/config"
	"senseact/internal/dao"
)

const summarizerPromptTemplate = `You are an advanced image analysis assistant specializing in extracting precise data from video and images captured by a home security camera.
Your task is to summarize the key events from a series of event descriptions in context in as much detail as possible.

Context events description:
%s

Provide only json output, with no additional text or commentary.
Output json as below:
- ` + "`title`" + `: string, a short one-line summary of the event.
- ` + "`event_summary`" + `: string, a longer narrative of the event.`

// Summarizer collapses a closed window's chronological event lines into one
// title plus narrative.
type Summarizer struct {
	cli *Client
}

func NewSummarizer(conf config.LLMConfig) *Summarizer {
	return &Summarizer{cli: NewClient(conf)}
}

// Summarize takes the window's context block (one "timestamp, description"
// line per frame, ascending) and returns the structured summary. Parse
// failures wrap ErrMalformedResponse; the caller leaves the window open and
// retries on its next pass.
func (s *Summarizer) Summarize(ctx context.Context, eventsContext string) (*dao.EventSummary, error) {
	prompt := fmt.Sprintf(summarizerPromptTemplate, eventsContext)

	reply, err := s.cli.ChatCompletion(ctx, []ContentPart{{Type: "text", Text: prompt}})
	if err != nil {
		return nil, err
	}

	var result dao.EventSummary
	if err := decodeJSON(reply, &result); err != nil {
		return nil, err
	}
	if result.Title == "" || result.EventSummary == "" {
		return nil, fmt.Errorf("%w: missing title or event_summary", ErrMalformedResponse)
	}
	return &result, nil
}
