package llm

import (
	"context"
	"fmt"
	"strings"

	"senseact/internal/config"
	"senseact/internal/dao"
)

const analyzerPromptTemplate = `You are an advanced image analysis assistant specializing in extracting precise data from video and images captured by a home security camera.
Your task is to analyze video or images and summarize the key events in as much detail as possible.
Focus on identifying and describing the actions of people, pets and dynamic objects (e.g., vehicles) rather than static background details.
Track and summarize movements or changes over time (e.g., 'A person walks to the front door' or 'A car pulls out of the driveway').

Provide only json output, with no additional text or commentary.

Context about previous events:
%s

Output json as below:
- ` + "`description`" + `: string, a short summary of the event.
- ` + "`event_category`" + `: string, one of %s.
- ` + "`trigger_alarm`" + `: float, a value between 0 and 1, indicating whether an abnormal situation that requires notification has occurred, with 1 indicating the most serious abnormality.
- ` + "`is_new_event`" + `: 1 or 0, a boolean value indicating whether the event is a new event compared to the previous event.`

// Analyzer turns one keyframe into a structured FrameAnalysis via the
// vision-language model.
type Analyzer struct {
	cli *Client
}

func NewAnalyzer(conf config.LLMConfig) *Analyzer {
	return &Analyzer{cli: NewClient(conf)}
}

// Analyze submits one or more image data URIs together with textual context
// about earlier events (may be empty). A reply that does not parse into the
// expected shape fails with ErrMalformedResponse; the frame is then dropped,
// not retried.
func (a *Analyzer) Analyze(ctx context.Context, images []string, previousEvents string) (*dao.FrameAnalysis, error) {
	var categories []string
	for _, c := range dao.EventCategories() {
		categories = append(categories, string(c))
	}
	prompt := fmt.Sprintf(analyzerPromptTemplate, previousEvents, strings.Join(categories, ", "))

	content := []ContentPart{{Type: "text", Text: prompt}}
	for _, img := range images {
		content = append(content, ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: img},
		})
	}

	reply, err := a.cli.ChatCompletion(ctx, content)
	if err != nil {
		return nil, err
	}

	var result dao.FrameAnalysis
	if err := decodeJSON(reply, &result); err != nil {
		return nil, err
	}
	if result.Description == "" {
		return nil, fmt.Errorf("%w: empty description", ErrMalformedResponse)
	}
	if !result.EventCategory.Valid() {
		return nil, fmt.Errorf("%w: unknown event category %q", ErrMalformedResponse, result.EventCategory)
	}
	if result.TriggerAlarm < 0 {
		result.TriggerAlarm = 0
	} else if result.TriggerAlarm > 1 {
		result.TriggerAlarm = 1
	}
	return &result, nil
}
