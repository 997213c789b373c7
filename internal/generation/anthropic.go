package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/leadroom/internal/domain"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

// outputInstructions is appended to every prompt so the model answers
// with a parseable envelope instead of free prose.
const outputInstructions = `

Respond with ONLY a JSON object, no markdown fences:
{"subject": "...", "body_html": "...", "body_text": "..."}`

// AnthropicGenerator calls the Anthropic Messages API directly.
type AnthropicGenerator struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewAnthropicGenerator creates a generator for the given API key and
// model.
func NewAnthropicGenerator(apiKey, model string, maxTokens int, timeout time.Duration) *AnthropicGenerator {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicGenerator{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate sends the prompt and parses the JSON envelope out of the
// model reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	reqBody := map[string]interface{}{
		"model":      g.model,
		"max_tokens": g.maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt + outputInstructions},
		},
	}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: anthropic returned %d: %s", domain.ErrGenerationFailed, resp.StatusCode, truncate(string(respBody), 300))
	}

	var apiResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrGenerationFailed, err)
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrGenerationFailed)
	}

	result, err := parseEnvelope(text)
	if err != nil {
		return nil, err
	}
	result.PromptTokens = apiResp.Usage.InputTokens
	result.CompletionTokens = apiResp.Usage.OutputTokens
	return result, nil
}

// parseEnvelope extracts the content envelope from the model reply,
// tolerating markdown fences the instructions ask it to omit.
func parseEnvelope(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}
	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("%w: malformed envelope: %v", domain.ErrGenerationFailed, err)
	}
	if result.Subject == "" || (result.BodyHTML == "" && result.BodyText == "") {
		return nil, fmt.Errorf("%w: envelope missing subject or body", domain.ErrGenerationFailed)
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
