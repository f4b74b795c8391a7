package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"

	"github.com/sashabaranov/go-openai"
)

var _ output.IntentClassifierPort = (*IntentClassifier)(nil)

const systemPrompt = `You classify web application routes for a UI test knowledge base.
Given a route with its interactive elements, answer with strict JSON only:
{"feature_name": "<short feature name>", "elements": {"<selector>": "<snake_case_intent_key>"}}
Intent keys are short machine-readable labels like "add_to_cart" or "submit_login".
Do not wrap the JSON in markdown.`

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
	}
}

// IntentClassifier asks an OpenRouter-hosted model what a route is for.
type IntentClassifier struct {
	client *openai.Client
	model  string
	logger output.LoggerPort
}

func NewIntentClassifier(cfg Config) *IntentClassifier {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	return &IntentClassifier{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

func (c *IntentClassifier) ClassifyRoute(ctx context.Context, route *entity.Route) (*entity.RouteIntent, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildRouteSummary(route)},
		},
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in classification response")
	}

	intent, err := parseIntentResponse(resp.Choices[0].Message.Content)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Unparseable classification response", "route", route.URL, "error", err)
		}
		return nil, err
	}
	return intent, nil
}

func buildRouteSummary(route *entity.Route) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Route: %s\nTitle: %s\nElements:\n", route.URL, route.Title)
	for _, el := range route.Elements {
		selector := el.BestSelector()
		if selector == "" {
			continue
		}
		fmt.Fprintf(&sb, "- selector=%s tag=%s role=%s text=%q\n", selector, el.Tag, el.Role, el.Text)
	}
	return sb.String()
}

type intentPayload struct {
	FeatureName string            `json:"feature_name"`
	Elements    map[string]string `json:"elements"`
}

func parseIntentResponse(content string) (*entity.RouteIntent, error) {
	content = strings.TrimSpace(content)
	// some models wrap JSON in a fenced block despite instructions
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var payload intentPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("invalid classification JSON: %w", err)
	}

	intents := make(map[string]string, len(payload.Elements))
	for selector, key := range payload.Elements {
		intents[selector] = SanitizeIntentKey(key)
	}
	return &entity.RouteIntent{
		FeatureName:    payload.FeatureName,
		ElementIntents: intents,
	}, nil
}

// SanitizeIntentKey normalizes a model-provided label to snake_case.
func SanitizeIntentKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	var sb strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r == ' ' || r == '-':
			sb.WriteRune('_')
		}
	}
	out := strings.Trim(sb.String(), "_")
	if out == "" {
		return entity.DefaultIntentKey
	}
	return out
}
