package llm

import (
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessagesNoHistory(t *testing.T) {
	messages := BuildMessages("what time is it", Options{})

	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	assert.Equal(t, "what time is it", messages[1].Content)
}

func TestBuildMessagesTrimsHistoryToFiveTurns(t *testing.T) {
	var history []Turn
	for i := 1; i <= 8; i++ {
		history = append(history, Turn{
			User:      fmt.Sprintf("question %d", i),
			Assistant: fmt.Sprintf("answer %d", i),
		})
	}

	messages := BuildMessages("current input", Options{History: history})

	// system + 5 turns x (user, assistant) + current input
	require.Len(t, messages, 12)

	// The oldest three turns are dropped; the rest stay chronological.
	for i := 0; i < 5; i++ {
		turn := i + 4 // turns 4..8
		user := messages[1+2*i]
		assistant := messages[2+2*i]
		assert.Equal(t, openai.ChatMessageRoleUser, user.Role)
		assert.Equal(t, fmt.Sprintf("question %d", turn), user.Content)
		assert.Equal(t, openai.ChatMessageRoleAssistant, assistant.Role)
		assert.Equal(t, fmt.Sprintf("answer %d", turn), assistant.Content)
	}

	assert.Equal(t, "current input", messages[11].Content)
}

func TestBuildMessagesShortHistoryKeptWhole(t *testing.T) {
	history := []Turn{
		{User: "hi", Assistant: "hello"},
		{User: "how are you", Assistant: "fine"},
	}

	messages := BuildMessages("bye", Options{History: history})
	require.Len(t, messages, 6)
	assert.Equal(t, "hi", messages[1].Content)
	assert.Equal(t, "fine", messages[4].Content)
}

func TestBuildMessagesIncludesContext(t *testing.T) {
	messages := BuildMessages("input", Options{Context: "user is driving"})
	assert.Contains(t, messages[0].Content, "user is driving")
}
