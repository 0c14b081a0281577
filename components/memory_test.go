package components

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/trip-planner/schema"
)

func TestMemoryOverflow(t *testing.T) {
	mem := NewMemory(2)
	mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("one"))
	mem.NewMessage(AssistantRole, schema.String("two"))
	mem.NewMessage(UserRole, schema.String("three"))
	history := mem.History()
	require.Len(t, history, 2)
	assert.Equal(t, "two", schema.Stringify(history[0].Content()))
	assert.Equal(t, "three", schema.Stringify(history[1].Content()))
}

func TestMemoryHistoryIsCopy(t *testing.T) {
	mem := NewMemory(0)
	mem.NewMessage(UserRole, schema.String("hello"))
	history := mem.History()
	history[0] = *NewMessage(UserRole, schema.String("changed"))
	assert.Equal(t, "hello", schema.Stringify(mem.History()[0].Content()))
}

func TestMemoryDeleteTurn(t *testing.T) {
	mem := NewMemory(0)
	first := mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("a"))
	second := mem.NewTurn()
	mem.NewMessage(UserRole, schema.String("b"))
	require.NotEqual(t, first, second)

	require.NoError(t, mem.DeleteTurn(second))
	assert.Equal(t, 1, mem.MessageCount())
	assert.Equal(t, first, mem.TurnID())
	assert.Error(t, mem.DeleteTurn("missing"))

	mem.Reset()
	assert.Equal(t, 0, mem.MessageCount())
	assert.Empty(t, mem.TurnID())
}

func TestMessageToOpenAI(t *testing.T) {
	msg := NewToolCallsMessage(schema.String(""), []ToolCall{{ID: "call_1", Name: "calculator", Arguments: `{"expression":"1+1"}`}})
	var dist openai.ChatCompletionMessage
	msg.ToOpenAI(&dist)
	assert.Equal(t, AssistantRole, dist.Role)
	require.Len(t, dist.ToolCalls, 1)
	assert.Equal(t, "calculator", dist.ToolCalls[0].Function.Name)

	reply := NewToolMessage(ToolCallback{ID: "call_1", Name: "calculator", Content: "2"})
	var replyDist openai.ChatCompletionMessage
	reply.ToOpenAI(&replyDist)
	assert.Equal(t, ToolRole, replyDist.Role)
	assert.Equal(t, "call_1", replyDist.ToolCallID)
	assert.Equal(t, "2", replyDist.Content)
}

func TestWordCounterTruncate(t *testing.T) {
	c := WordCounter{}
	assert.Equal(t, 4, c.Count("one two  three\nfour"))
	assert.Equal(t, "one two", c.Truncate("one two three", 2))
	assert.Equal(t, "one two", c.Truncate("one two", 5))
	assert.Equal(t, "", c.Truncate("one", 0))
}
