// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expand

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

// toolCallResponse builds a chat completion whose single tool call carries
// the given arguments JSON.
func toolCallResponse(arguments string) string {
	resp := map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index": 0,
			"message": map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      "formulate_search_queries",
						"arguments": arguments,
					},
				}},
			},
			"finish_reason": "tool_calls",
		}},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func testExpander(t *testing.T, handler http.HandlerFunc) *Expander {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	e, err := New(types.ExpandConfig{AIConfig: types.AIConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL,
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(types.ExpandConfig{})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestExpandParsesToolCall(t *testing.T) {
	args := `{"queries":["spiking neural network models","neuromorphic hardware architectures"],"field":"neuroscience","keywords":["SNN","spike timing","plasticity"]}`
	e := testExpander(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, toolCallResponse(args))
	})

	qs, err := e.Expand(context.Background(), "spiking neural networks")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	wantQueries := []string{"spiking neural network models", "neuromorphic hardware architectures"}
	if !reflect.DeepEqual(qs.Queries, wantQueries) {
		t.Errorf("Queries = %v, want %v", qs.Queries, wantQueries)
	}
	if qs.Field != "neuroscience" {
		t.Errorf("Field = %q", qs.Field)
	}
	if len(qs.Keywords) != 3 {
		t.Errorf("Keywords = %v", qs.Keywords)
	}
}

func TestExpandRequestShape(t *testing.T) {
	var captured map[string]any
	e := testExpander(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, toolCallResponse(`{"queries":["q"],"field":"","keywords":[]}`))
	})

	if _, err := e.Expand(context.Background(), "my topic"); err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// The tool call is forced, not optional.
	toolChoice, ok := captured["tool_choice"].(map[string]any)
	if !ok {
		t.Fatalf("tool_choice = %v, want forced function", captured["tool_choice"])
	}
	fn := toolChoice["function"].(map[string]any)
	if fn["name"] != "formulate_search_queries" {
		t.Errorf("forced tool = %v", fn["name"])
	}

	msgs := captured["messages"].([]any)
	last := msgs[len(msgs)-1].(map[string]any)
	if !strings.Contains(last["content"].(string), "my topic") {
		t.Errorf("user message = %v, want topic included", last["content"])
	}
}

func TestExpandEmptyQueriesFallsBackToTopic(t *testing.T) {
	e := testExpander(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, toolCallResponse(`{"queries":[],"field":"physics","keywords":["k"]}`))
	})

	qs, err := e.Expand(context.Background(), "quantum annealing")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !reflect.DeepEqual(qs.Queries, []string{"quantum annealing"}) {
		t.Errorf("Queries = %v, want the topic itself", qs.Queries)
	}
	if qs.Field != "physics" {
		t.Errorf("Field = %q, want preserved", qs.Field)
	}
}

func TestExpandErrorsOnMissingToolCall(t *testing.T) {
	e := testExpander(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"plain text"},"finish_reason":"stop"}]}`)
	})

	_, err := e.Expand(context.Background(), "topic")
	if err == nil {
		t.Fatal("expected error when no tool call returned")
	}
}

func TestExpandErrorsOnMalformedArguments(t *testing.T) {
	e := testExpander(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, toolCallResponse(`{not json`))
	})

	_, err := e.Expand(context.Background(), "topic")
	if err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}

func TestExpandErrorsOnHTTPFailure(t *testing.T) {
	e := testExpander(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := e.Expand(context.Background(), "topic")
	if err == nil {
		t.Fatal("expected error for HTTP failure")
	}
}

func TestFallback(t *testing.T) {
	qs := Fallback("my research topic")
	if !reflect.DeepEqual(qs.Queries, []string{"my research topic"}) {
		t.Errorf("Queries = %v", qs.Queries)
	}
	if qs.Field != "" {
		t.Errorf("Field = %q, want empty", qs.Field)
	}
	if qs.Keywords == nil || len(qs.Keywords) != 0 {
		t.Errorf("Keywords = %v, want empty non-nil", qs.Keywords)
	}
}
