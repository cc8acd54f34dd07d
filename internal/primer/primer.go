// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package primer generates an academic primer from enriched records,
// streaming the generated text as it arrives.
package primer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/meshintelligence/primer-engine/pkg/types"
)

const (
	defaultBaseURL   = "https://api.groq.com/openai/v1"
	defaultModel     = "llama-3.3-70b-versatile"
	defaultMaxTokens = 3000
)

const systemPrompt = "You are a scientific writer producing academic primers for PhD-level researchers. " +
	"Your primers are rigorous, precise, and assume graduate-level mathematical and scientific literacy. " +
	"Do not over-explain basics. Use field-standard notation and terminology. " +
	"Cite papers using bracketed numbers like [1], [2], [3] inline throughout the text. " +
	"Every paper provided to you must be cited at least once - do not omit any reference. " +
	"Be concise - every sentence should add information."

// Generator streams primer text from an OpenAI-compatible chat API.
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// New constructs a Generator from config. The zero BaseURL targets Groq.
func New(cfg types.PrimerConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("primer API key is required")
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
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Generator{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Stream generates the primer and writes each text chunk to w as it
// arrives. failed lists records whose full text could not be retrieved;
// they are surfaced as further reading.
func (g *Generator) Stream(ctx context.Context, topic string, records, failed []types.Record, w io.Writer) error {
	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Stream:    true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(topic, records, failed)},
		},
	})
	if err != nil {
		return fmt.Errorf("primer API call: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("primer stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if text := resp.Choices[0].Delta.Content; text != "" {
			if _, err := io.WriteString(w, text); err != nil {
				return err
			}
		}
	}
}

// BuildPrompt assembles the generation prompt: numbered record context
// (full text where available, abstract otherwise), the section template,
// and a further-reading block for failed records.
func BuildPrompt(topic string, records, failed []types.Record) string {
	return fmt.Sprintf(promptTemplate, topic, buildContext(records), buildFurtherReading(failed))
}

const promptTemplate = `Write an academic primer on the following topic for a PhD-level student.
Target length: 2000-2500 words total across all sections.

**Topic:** %s

**Available papers - you MUST cite every one of them at least once:**

%s

---

Use exactly these four sections with the headings shown:

## Background
Approximately 500 words. Establish the scientific context: why this topic matters, what problem it addresses, and how it fits within the broader field. Cover the key historical developments and the conceptual arc that led to the current state of research. Cite liberally.

## Results
Approximately 1000 words. Summarize the principal empirical and theoretical findings reported across the papers. What has been demonstrated, measured, or proven? Group related findings. Be specific: report effect sizes, model names, experimental conditions, or key equations where relevant. Cite each finding to its source.

## Discussion
Approximately 500 words. Interpret the results in aggregate. What do they collectively reveal? Where do findings converge or conflict? What are the open questions and active debates? What should a new researcher in this area focus on first?
%s
## References
List every paper you cited inline, in order of their citation number. Use this format exactly:
[n] Title (Authors, Year) URL

Include the URL if one is available in the paper metadata provided above. Do not add any sections beyond these.`

// buildContext renders each record as a numbered section with a header
// line and either its full text or its abstract.
func buildContext(records []types.Record) string {
	sections := make([]string, 0, len(records))
	for i, r := range records {
		content := r.FullText
		sourceNote := "(full text)"
		if content == "" {
			content = r.Abstract
			sourceNote = "(abstract only)"
			if content == "" {
				content = "(no abstract available)"
			}
		}
		header := fmt.Sprintf("[%d] %s (%s, %s%s)", i+1, r.Title, citeAuthors(r.Authors), citeYear(r.Year), citeVenue(r.Venue))
		sections = append(sections, header+" "+sourceNote+"\n"+content)
	}
	return strings.Join(sections, "\n\n---\n\n")
}

// buildFurtherReading lists records whose PDFs could not be retrieved, so
// the primer can mention them without summarizing their content.
func buildFurtherReading(failed []types.Record) string {
	if len(failed) == 0 {
		return ""
	}
	lines := make([]string, 0, len(failed))
	for i, r := range failed {
		line := fmt.Sprintf("%d. %s (%s, %s)", i+1, r.Title, citeAuthors(r.Authors), citeYear(r.Year))
		if r.URL != "" {
			line += " " + r.URL
		}
		lines = append(lines, line)
	}
	return "\n\n**The following papers were identified as relevant but their PDFs " +
		"could not be retrieved. Mention them in a '## Further Reading' section " +
		"at the end of the primer with a one-sentence note on their likely relevance " +
		"based on title and authors:**\n" + strings.Join(lines, "\n") + "\n"
}

func citeAuthors(authors []string) string {
	if len(authors) == 0 {
		return "unknown authors"
	}
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

func citeYear(year int) string {
	if year <= 0 {
		return "n.d."
	}
	return fmt.Sprintf("%d", year)
}

func citeVenue(venue string) string {
	if venue == "" {
		return ""
	}
	return " - " + venue
}
