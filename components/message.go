package components

import (
	"github.com/rs/xid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/trip-planner/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = openai.ChatMessageRoleSystem
	UserRole      MessageRole = openai.ChatMessageRoleUser
	AssistantRole MessageRole = openai.ChatMessageRoleAssistant
	ToolRole      MessageRole = openai.ChatMessageRoleTool
)

// Message represents a message in the chat history.
type Message struct {
	content schema.Schema
	// role is the role of the message sender
	role MessageRole
	// turnID is Unique identifier for the turn this message belongs to.
	turnID string
	// toolCalls requested by the assistant
	toolCalls []ToolCall
	// toolCallID is the call a tool message answers
	toolCallID string
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// NewToolCallsMessage returns an assistant message carrying tool calls
func NewToolCallsMessage(content schema.Schema, calls []ToolCall) *Message {
	msg := NewMessage(AssistantRole, content)
	msg.toolCalls = calls
	return msg
}

// NewToolMessage returns the tool message answering a tool call
func NewToolMessage(cb ToolCallback) *Message {
	msg := NewMessage(ToolRole, schema.String(cb.Content))
	msg.toolCallID = cb.ID
	return msg
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

func (m Message) ToolCalls() []ToolCall {
	return m.toolCalls
}

func (m Message) ToolCallID() string {
	return m.toolCallID
}

// ToOpenAI convert message to openai ChatCompletionMessage
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.role
	dist.Content = schema.Stringify(m.content)
	dist.ToolCallID = m.toolCallID
	if len(m.toolCalls) > 0 {
		ToolCallsToOpenAI(m.toolCalls, dist)
	}
}
