// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expand turns a free-text research topic into a QuerySet: 2-3
// precise search queries, a field label, and key technical terms. It is a
// single LLM call against an OpenAI-compatible API; callers fall back to
// Fallback on any failure.
package expand

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
)

const systemPrompt = "You are an expert academic librarian helping a PhD-level researcher find papers. " +
	"Given a topic description, formulate precise search queries for academic databases. " +
	"Prefer technical terminology over colloquial phrasing. " +
	"Each query should cover a different facet of the topic."

// expandToolSchema is the JSON schema for the structured expansion output.
var expandToolSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"queries": {
			"type": "array",
			"items": {"type": "string"},
			"description": "2-3 search queries targeting distinct angles of the topic. Use technical academic phrasing, not conversational language."
		},
		"field": {
			"type": "string",
			"description": "The primary research field (e.g. 'neuroscience', 'machine learning', 'condensed matter physics'). Used to route to the right databases."
		},
		"keywords": {
			"type": "array",
			"items": {"type": "string"},
			"description": "4-8 key technical terms that define the topic."
		}
	},
	"required": ["queries", "field", "keywords"]
}`)

// Expander calls an OpenAI-compatible chat API with a forced tool call to
// obtain structured query expansions.
type Expander struct {
	client *openai.Client
	model  string
}

// New constructs an Expander from config. The zero BaseURL targets Groq.
func New(cfg types.ExpandConfig) (*Expander, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("expansion API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	if clientConfig.BaseURL == "" {
		clientConfig.BaseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Expander{client: openai.NewClientWithConfig(clientConfig), model: model}, nil
}

// Expand produces a QuerySet for the topic. Errors bubble up; callers
// degrade to Fallback.
func (e *Expander) Expand(ctx context.Context, topic string) (types.QuerySet, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: 512,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Topic: " + topic},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name: "formulate_search_queries",
				Description: "Given a research topic description, produce precise search queries for academic " +
					"paper databases (Semantic Scholar, PubMed). Queries should use technical terminology " +
					"that would appear in paper titles and abstracts.",
				Parameters: expandToolSchema,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: "formulate_search_queries"},
		},
	})
	if err != nil {
		return types.QuerySet{}, fmt.Errorf("expansion API call: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return types.QuerySet{}, fmt.Errorf("expansion response carried no tool call")
	}

	var qs types.QuerySet
	args := resp.Choices[0].Message.ToolCalls[0].Function.Arguments
	if err := json.Unmarshal([]byte(args), &qs); err != nil {
		return types.QuerySet{}, fmt.Errorf("parsing expansion arguments: %w", err)
	}
	if len(qs.Queries) == 0 {
		qs.Queries = []string{topic}
	}
	return qs, nil
}

// Fallback is the degraded single-query expansion used when the LLM call
// fails: the topic itself as the only query, no field, no keywords.
func Fallback(topic string) types.QuerySet {
	return types.QuerySet{Queries: []string{topic}, Keywords: []string{}}
}
