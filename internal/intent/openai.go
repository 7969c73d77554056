package intent

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/giladondon/xo-assistance/internal/xoerr"
)

//go:embed prompts/xo_assistance_prompt.txt
var defaultIntentPrompt string

//go:embed prompts/summarize_schedule_prompt.txt
var defaultSummarizePrompt string

// OpenAIParser implements Parser on the OpenAI chat completions API.
type OpenAIParser struct {
	client          *openai.Client
	model           string
	intentPrompt    string
	summarizePrompt string
}

// Option configures an OpenAIParser.
type Option func(*OpenAIParser)

// WithIntentPromptFile overrides the embedded intent prompt.
func WithIntentPromptFile(path string) Option {
	return func(p *OpenAIParser) {
		if raw, err := os.ReadFile(path); err == nil {
			p.intentPrompt = string(raw)
		}
	}
}

// WithSummarizePromptFile overrides the embedded summarize prompt.
func WithSummarizePromptFile(path string) Option {
	return func(p *OpenAIParser) {
		if raw, err := os.ReadFile(path); err == nil {
			p.summarizePrompt = string(raw)
		}
	}
}

// NewOpenAIParser creates a parser against the given API key and model.
func NewOpenAIParser(apiKey, model string, opts ...Option) *OpenAIParser {
	p := &OpenAIParser{
		client:          openai.NewClient(apiKey),
		model:           model,
		intentPrompt:    defaultIntentPrompt,
		summarizePrompt: defaultSummarizePrompt,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse asks the model for the strict-JSON command object and decodes it.
func (p *OpenAIParser) Parse(ctx context.Context, rawText string, labels []string, today time.Time) (*Command, error) {
	system := strings.ReplaceAll(p.intentPrompt, "{LABELS}", strings.Join(labels, ", "))
	user := fmt.Sprintf("התאריך היום הוא %s. הפקודה היא: %s", today.Format("2006-01-02"), rawText)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return nil, xoerr.Transient("intent parse", err)
	}
	if len(resp.Choices) == 0 {
		return nil, xoerr.Transient("intent parse", fmt.Errorf("model returned no choices"))
	}

	return ExtractCommand(resp.Choices[0].Message.Content)
}

// Summarize asks the model for a schedule summary over the event lines.
func (p *OpenAIParser) Summarize(ctx context.Context, eventLines []string, today time.Time) (string, error) {
	prompt := strings.ReplaceAll(p.summarizePrompt, "{TODAY}", today.Format("02/01/2006"))
	prompt = prompt + "\n" + strings.Join(eventLines, "\n")

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", xoerr.Transient("schedule summary", err)
	}
	if len(resp.Choices) == 0 {
		return "", xoerr.Transient("schedule summary", fmt.Errorf("model returned no choices"))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
