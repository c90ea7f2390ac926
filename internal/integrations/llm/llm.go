package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"unitconv/internal/convert"
	"unitconv/internal/query"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var ErrNotAConversion = errors.New("text is not a unit conversion request")

type LLMUsage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u LLMUsage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

type completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, LLMUsage, error)

// Parser turns free-form questions into conversion requests using Anthropic.
type Parser struct {
	model    string
	complete completeFunc
}

func NewParser(cfg Config) *Parser {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(externalHTTPClient),
	)
	p := &Parser{model: cfg.LLMModel}
	p.complete = func(ctx context.Context, systemPrompt, userPrompt string) (string, LLMUsage, error) {
		return callAnthropic(ctx, client, p.model, systemPrompt, userPrompt)
	}
	return p
}

type parsedRequest struct {
	Value    *float64 `json:"value"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Category string   `json:"category"`
	Error    string   `json:"error"`
}

// Parse asks the model to extract value, units and category from text. The
// answer is checked against the unit tables before it is returned.
func (p *Parser) Parse(ctx context.Context, text string) (ConversionRequest, LLMUsage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ConversionRequest{}, LLMUsage{}, ErrNotAConversion
	}
	systemPrompt, userPrompt := buildParsePrompts(text)
	log.Printf("llm parse model=%s chars=%d", p.model, len(text))

	responseText, usage, err := p.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return ConversionRequest{}, usage, err
	}
	req, err := parseConversionResponse(responseText)
	return req, usage, err
}

func buildParsePrompts(text string) (string, string) {
	var sb strings.Builder
	sb.WriteString("You extract unit conversion requests for a calculator.\n")
	sb.WriteString("Only these categories and unit names exist (use the exact spelling):\n")
	for _, cat := range convert.Categories() {
		units, _ := convert.Units(cat)
		fmt.Fprintf(&sb, "- %s: %s\n", cat, strings.Join(units, ", "))
	}
	sb.WriteString("\nRespond with a single JSON object and nothing else:\n")
	sb.WriteString(`{"value": <number>, "from": "<unit>", "to": "<unit>", "category": "<category>"}`)
	sb.WriteString("\nBoth units must belong to the same category.\n")
	sb.WriteString(`If the text is not a conversion between the units above, respond {"error": "<short reason>"}.`)
	sb.WriteString("\n")

	userPrompt := "Request: " + text
	return sb.String(), userPrompt
}

func parseConversionResponse(response string) (ConversionRequest, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var parsed parsedRequest
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return ConversionRequest{}, fmt.Errorf("failed to parse llm response: %w (response: %.200s)", err, response)
	}
	if parsed.Error != "" {
		return ConversionRequest{}, fmt.Errorf("%w: %s", ErrNotAConversion, parsed.Error)
	}
	if parsed.Value == nil {
		return ConversionRequest{}, fmt.Errorf("%w: no value in llm response", ErrNotAConversion)
	}

	from, ok := query.NormalizeUnit(parsed.From)
	if !ok {
		return ConversionRequest{}, &convert.LookupError{Unit: parsed.From}
	}
	to, ok := query.NormalizeUnit(parsed.To)
	if !ok {
		return ConversionRequest{}, &convert.LookupError{Unit: parsed.To}
	}
	category, err := convert.CategoryOf(from)
	if err != nil {
		return ConversionRequest{}, err
	}
	if parsed.Category != "" && !strings.EqualFold(parsed.Category, string(category)) {
		log.Printf("llm parse category mismatch model=%s unit=%s", parsed.Category, category)
	}
	if _, err := convert.LookupUnit(category, to); err != nil {
		return ConversionRequest{}, err
	}

	return ConversionRequest{
		Value:    *parsed.Value,
		FromUnit: from,
		ToUnit:   to,
		Category: string(category),
	}, nil
}

func callAnthropic(ctx context.Context, client anthropic.Client, model, systemPrompt, userPrompt string) (string, LLMUsage, error) {
	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", LLMUsage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := LLMUsage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}
