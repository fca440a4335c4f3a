package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"screen_ai_server/internal/ai/prompts"
	"screen_ai_server/internal/types"
)

// ChatCompleter is the slice of the model client the generator needs.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAICompleter is the production ChatCompleter backed by the OpenAI API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICompleter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			// Low temperature for more predictable markup generation.
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// tagRe matches anything that looks like an HTML tag, for last-resort
// markup salvage.
var tagRe = regexp.MustCompile(`<[^>]+>`)

const defaultScreenName = "Generated Screen"

// Generator turns a free-text prompt into a ScreenData record.
type Generator struct {
	completer ChatCompleter
	timeout   time.Duration
}

func NewGenerator(completer ChatCompleter, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Generator{completer: completer, timeout: timeout}
}

// Generate is a total function: whatever the model call returns, including
// an error or a timeout, the result is a usable screen. Callers never see
// an upstream failure as an error; they see fallback content instead.
func (g *Generator) Generate(ctx context.Context, projectName, userPrompt string) types.ScreenData {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.completer.Complete(callCtx, prompts.ScreenSystemPrompt, prompts.ScreenUserPrompt(projectName, userPrompt))
	if err != nil {
		log.Printf("WARN: model call failed, serving fallback screen: %v", err)
		return Synthesize(userPrompt)
	}

	if sd, ok := Extract(raw); ok {
		if strings.TrimSpace(sd.Name) == "" {
			sd.Name = defaultScreenName
		}
		sd.IsFallback = false
		return sd
	}

	// Last resort: salvage raw markup fragments from the response.
	if tags := tagRe.FindAllString(raw, 5); len(tags) > 0 {
		log.Printf("Info: extraction found no structure, salvaged %d markup fragments", len(tags))
		return types.ScreenData{
			Name:        defaultScreenName,
			HTMLContent: strings.Join(tags, "\n"),
		}
	}

	log.Println("Info: model output had no recoverable structure, serving fallback screen")
	return Synthesize(userPrompt)
}
