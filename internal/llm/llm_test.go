package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"senseact/internal/config"
	"senseact/internal/dao"
)

func chatServer(t *testing.T, reply string, gotReq *ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if gotReq != nil {
			if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		resp := ChatCompletionResponse{
			Choices: []Choice{{Message: TextMessage{Role: "assistant", Content: reply}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testConf(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		BaseURL:    baseURL + "/v1",
		Model:      "test-vlm",
		MaxTokens:  512,
		TimeoutSec: 5,
	}
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	reply := "```json\n{\"description\": \"a person walks to the door\", \"event_category\": \"intrusion\", \"trigger_alarm\": 0.7, \"is_new_event\": 1}\n```"
	var req ChatCompletionRequest
	srv := chatServer(t, reply, &req)
	defer srv.Close()

	a := NewAnalyzer(testConf(srv.URL))
	got, err := a.Analyze(context.Background(), []string{"data:image/jpeg;base64,AAAA"}, "earlier: nothing")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.EventCategory != dao.EventIntrusion || got.TriggerAlarm != 0.7 || got.IsNewEvent != 1 {
		t.Fatalf("unexpected analysis: %+v", got)
	}

	// One text part plus one image part, context embedded in the prompt.
	if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
		t.Fatalf("unexpected request shape: %+v", req.Messages)
	}
	if req.Messages[0].Content[1].ImageURL.URL != "data:image/jpeg;base64,AAAA" {
		t.Fatalf("image part = %+v", req.Messages[0].Content[1])
	}
	if req.Model != "test-vlm" {
		t.Fatalf("model = %s", req.Model)
	}
}

func TestAnalyzeClampsAlarm(t *testing.T) {
	reply := `{"description": "fire", "event_category": "fire", "trigger_alarm": 1.7}`
	srv := chatServer(t, reply, nil)
	defer srv.Close()

	got, err := NewAnalyzer(testConf(srv.URL)).Analyze(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.TriggerAlarm != 1 {
		t.Fatalf("alarm = %v, want clamped to 1", got.TriggerAlarm)
	}
}

func TestAnalyzeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         "the scene shows a cat",
		"unknown category": `{"description": "x", "event_category": "earthquake", "trigger_alarm": 0}`,
		"no description":   `{"event_category": "fire", "trigger_alarm": 0}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			srv := chatServer(t, reply, nil)
			defer srv.Close()

			_, err := NewAnalyzer(testConf(srv.URL)).Analyze(context.Background(), nil, "")
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("err = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	reply := "```json\n{\"title\": \"package delivered\", \"event_summary\": \"a courier left a package at the door\"}\n```"
	srv := chatServer(t, reply, nil)
	defer srv.Close()

	got, err := NewSummarizer(testConf(srv.URL)).Summarize(context.Background(), "2024-01-01 10:00:00.000, courier arrives\n")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.Title != "package delivered" || got.EventSummary == "" {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestSummarizeMalformed(t *testing.T) {
	srv := chatServer(t, `{"title": ""}`, nil)
	defer srv.Close()

	_, err := NewSummarizer(testConf(srv.URL)).Summarize(context.Background(), "x")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestChatCompletionErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAnalyzer(testConf(srv.URL)).Analyze(context.Background(), nil, "")
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Fatal("transport error must not be classified as malformed response")
	}
}
