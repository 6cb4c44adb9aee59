package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse marks an analyzer or summarizer reply that could not
// be parsed into its expected structure. The caller abandons the current
// unit of work and leaves durable state untouched.
var ErrMalformedResponse = errors.New("malformed model response")

// decodeJSON parses the model's reply into out. Models frequently wrap the
// object in a markdown code fence despite being told not to, so fences are
// stripped first. Any parse failure wraps ErrMalformedResponse.
func decodeJSON(reply string, out any) error {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
