// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package primer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

func testGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	g, err := New(types.PrimerConfig{AIConfig: types.AIConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL,
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

// streamHandler serves the given chunks as a server-sent-event completion
// stream.
func streamHandler(chunks []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: {\"id\":\"x\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(types.PrimerConfig{})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestStreamWritesChunksInOrder(t *testing.T) {
	g := testGenerator(t, streamHandler([]string{"## Background\n", "This topic ", "matters."}))

	var buf bytes.Buffer
	err := g.Stream(context.Background(), "test topic", nil, nil, &buf)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got := buf.String(); got != "## Background\nThis topic matters." {
		t.Errorf("streamed text = %q", got)
	}
}

func TestStreamErrorsOnHTTPFailure(t *testing.T) {
	g := testGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	var buf bytes.Buffer
	err := g.Stream(context.Background(), "topic", nil, nil, &buf)
	if err == nil {
		t.Fatal("expected error for HTTP failure")
	}
}

// --- Prompt assembly ---

func sampleRecord() types.Record {
	return types.Record{
		Title:    "Deep Residual Learning",
		Authors:  []string{"Kaiming He", "Xiangyu Zhang"},
		Year:     2016,
		Venue:    "CVPR",
		Abstract: "Deeper networks are harder to train.",
		URL:      "https://example.org/resnet",
	}
}

func TestBuildPromptIncludesTopicAndSections(t *testing.T) {
	prompt := BuildPrompt("residual networks", []types.Record{sampleRecord()}, nil)

	if !strings.Contains(prompt, "**Topic:** residual networks") {
		t.Error("prompt missing topic")
	}
	for _, section := range []string{"## Background", "## Results", "## Discussion", "## References"} {
		if !strings.Contains(prompt, section) {
			t.Errorf("prompt missing section %q", section)
		}
	}
}

func TestBuildPromptNumbersRecords(t *testing.T) {
	r1 := sampleRecord()
	r2 := sampleRecord()
	r2.Title = "Second Paper"
	r2.FullText = "The extracted full text."

	prompt := BuildPrompt("topic", []types.Record{r1, r2}, nil)

	if !strings.Contains(prompt, "[1] Deep Residual Learning") {
		t.Error("first record not numbered [1]")
	}
	if !strings.Contains(prompt, "[2] Second Paper") {
		t.Error("second record not numbered [2]")
	}
	// Abstract-only vs full-text records are marked.
	if !strings.Contains(prompt, "(abstract only)") {
		t.Error("abstract-only marker missing")
	}
	if !strings.Contains(prompt, "(full text)") {
		t.Error("full-text marker missing")
	}
	if !strings.Contains(prompt, "The extracted full text.") {
		t.Error("full text content missing")
	}
	if !strings.Contains(prompt, "Deeper networks are harder to train.") {
		t.Error("abstract content missing")
	}
}

func TestBuildPromptFurtherReading(t *testing.T) {
	failed := types.Record{
		Title:   "Unfetchable Paper",
		Authors: []string{"Alice Smith"},
		Year:    2022,
		URL:     "https://example.org/unfetchable",
	}

	prompt := BuildPrompt("topic", []types.Record{sampleRecord()}, []types.Record{failed})

	if !strings.Contains(prompt, "Further Reading") {
		t.Error("further-reading block missing")
	}
	if !strings.Contains(prompt, "1. Unfetchable Paper (Alice Smith, 2022) https://example.org/unfetchable") {
		t.Error("failed record line missing or malformed")
	}
}

func TestBuildPromptNoFurtherReadingWhenNoneFailed(t *testing.T) {
	prompt := BuildPrompt("topic", []types.Record{sampleRecord()}, nil)
	if strings.Contains(prompt, "Further Reading") {
		t.Error("further-reading block should be absent with no failed records")
	}
}

// --- Citation helpers ---

func TestCiteAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"none", nil, "unknown authors"},
		{"single", []string{"Smith"}, "Smith"},
		{"three", []string{"A", "B", "C"}, "A, B, C"},
		{"four truncated", []string{"A", "B", "C", "D"}, "A, B, C et al."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := citeAuthors(tt.authors); got != tt.want {
				t.Errorf("citeAuthors(%v) = %q, want %q", tt.authors, got, tt.want)
			}
		})
	}
}

func TestCiteYear(t *testing.T) {
	if got := citeYear(2021); got != "2021" {
		t.Errorf("citeYear(2021) = %q", got)
	}
	if got := citeYear(0); got != "n.d." {
		t.Errorf("citeYear(0) = %q, want n.d.", got)
	}
}

func TestCiteVenue(t *testing.T) {
	if got := citeVenue("CVPR"); got != " - CVPR" {
		t.Errorf("citeVenue = %q", got)
	}
	if got := citeVenue(""); got != "" {
		t.Errorf("citeVenue(\"\") = %q, want empty", got)
	}
}
