package llm

import (
	"github.com/sashabaranov/go-openai"
)

// maxHistoryTurns caps how many prior turns are included in the prompt.
const maxHistoryTurns = 5

const systemPrompt = `You are a voice assistant. Provide a helpful, concise reply to the user. ` +
	`The reply will be converted to speech, so use plain conversational sentences ` +
	`without markdown, lists, or code.`

// BuildMessages assembles the chat messages for one generation: the system
// instruction (with any caller-supplied context appended), at most the
// maxHistoryTurns most recent prior turns in chronological order, then the
// current input.
func BuildMessages(input string, opts Options) []openai.ChatCompletionMessage {
	system := systemPrompt
	if opts.Context != "" {
		system += "\n\nContext: " + opts.Context
	}

	history := opts.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2+2*len(history))
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})

	for _, turn := range history {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.User},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.Assistant},
		)
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	return messages
}
