// Package llm turns recognized (or typed) input into reply text using the
// OpenAI chat completion API.
package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Turn is one prior exchange supplied by the caller as conversation context.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Options carries optional generation context.
type Options struct {
	// History holds prior turns, oldest first. Only the most recent
	// maxHistoryTurns are used.
	History []Turn

	// Context is a free-form string placed ahead of the input.
	Context string
}

// Generator produces reply text. It holds no per-request state and is safe
// to share across requests.
type Generator struct {
	client *openai.Client
	model  string
}

func NewGenerator(apiKey, model string) *Generator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Generator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate returns reply text for the given input. An empty or missing
// completion is an error; the caller treats any error as generation failure.
func (g *Generator) Generate(ctx context.Context, input string, opts Options) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty input text")
	}

	messages := BuildMessages(input, opts)
	log.Printf("[LLM] Calling OpenAI with model %s, %d messages", g.model, len(messages))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: 0.6,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("OpenAI returned empty content")
	}

	log.Printf("[LLM] Reply received (length: %d). Usage - prompt: %d, completion: %d, total: %d",
		len(reply), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	return reply, nil
}
