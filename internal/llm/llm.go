// Package llm wraps the chat-completion model behind the three narrow
// operations the pipeline needs. Extraction runs at temperature 0 so
// repeated runs over the same window extract the same keywords.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"trendpulse/internal/logger"
)

// ExtractedKeyword is one keyword the model pulled out of a title batch.
type ExtractedKeyword struct {
	Keyword string   `json:"keyword"`
	Aliases []string `json:"aliases"`
}

// Client is the model contract the pipeline consumes. Implemented by
// OpenAIClient in production and by mocks in tests.
type Client interface {
	ExtractKeywords(ctx context.Context, titles []string) ([]ExtractedKeyword, error)
	Summarize(ctx context.Context, keyword string, snippets []string, lang string) (string, error)
	TranslateTitles(ctx context.Context, titles []string) ([]string, error)
}

const extractSystemPrompt = `You extract trending AI keywords from news titles.
Rules:
- Each keyword is 1-3 words (absolute maximum 4).
- Keep product and version names verbatim (e.g. "GPT-5", "Llama 3.1").
- Never return an article headline or a full sentence.
- Never return generic AI terms alone ("AI", "LLM", "machine learning", "생성형 AI").
- Return 20-35 keywords per request.
Respond with only a JSON array of objects: [{"keyword": "...", "aliases": ["..."]}].`

const summarizeSystemPromptKo = `주어진 키워드와 관련 기사 발췌를 바탕으로 한국어 요약을 작성한다.
규칙: 220자 이내, 이모지 금지, 불릿 금지, 한 문단의 평서문 한 줄.`

const summarizeSystemPromptEn = `Write an English summary of the keyword based on the article excerpts.
Rules: at most 220 characters, no emoji, no bullet points, a single prose line.`

const translateSystemPrompt = `Translate each line into Korean, preserving proper nouns and product names.
Return exactly one translated line per input line, in the same order, with no numbering.`

// OpenAIClient implements Client over the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds the production client.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}
}

// NewOpenAIClientWithConfig is used by tests to point at a fake endpoint.
func NewOpenAIClientWithConfig(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// ExtractKeywords asks the model for keywords covering the given titles.
func (c *OpenAIClient) ExtractKeywords(ctx context.Context, titles []string) ([]ExtractedKeyword, error) {
	content, err := c.complete(ctx, extractSystemPrompt, strings.Join(titles, "\n"), 0, 90*time.Second)
	if err != nil {
		return nil, err
	}

	var keywords []ExtractedKeyword
	if err := json.Unmarshal([]byte(ExtractJSONArray(content)), &keywords); err != nil {
		return nil, fmt.Errorf("failed to parse keyword response: %w", err)
	}
	return keywords, nil
}

// Summarize produces a short single-line summary in the requested language.
func (c *OpenAIClient) Summarize(ctx context.Context, keyword string, snippets []string, lang string) (string, error) {
	system := summarizeSystemPromptKo
	if lang == "en" {
		system = summarizeSystemPromptEn
	}
	user := fmt.Sprintf("Keyword: %s\n\n%s", keyword, strings.Join(snippets, "\n---\n"))

	content, err := c.complete(ctx, system, user, 0.2, 45*time.Second)
	if err != nil {
		return "", err
	}
	return clampSummary(content), nil
}

// TranslateTitles translates titles line by line. A line-count mismatch in
// the response returns the originals untouched.
func (c *OpenAIClient) TranslateTitles(ctx context.Context, titles []string) ([]string, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	content, err := c.complete(ctx, translateSystemPrompt, strings.Join(titles, "\n"), 0.1, 45*time.Second)
	if err != nil {
		return nil, err
	}

	lines := nonEmptyLines(content)
	if len(lines) != len(titles) {
		logger.Warn("translation line count mismatch", "want", len(titles), "got", len(lines))
		return titles, nil
	}
	return lines, nil
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string, temperature float32, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The request struct tags Temperature omitempty, so a literal 0 would be
	// dropped from the body and the API would sample at its default. The
	// smallest positive float32 serializes and rounds to 0 server-side.
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ExtractJSONArray returns the first [...] substring of s, tolerating
// markdown fences and prose around the payload. Returns "[]" when none.
func ExtractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "[]"
	}
	return s[start : end+1]
}

// clampSummary enforces the single-line 220 char contract on model output.
func clampSummary(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > 220 {
		s = string(runes[:220])
	}
	return s
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
