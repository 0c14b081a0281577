package components

import (
	openai "github.com/sashabaranov/go-openai"
)

// LLMResponse provider chat response
type LLMResponse struct {
	ID      string      `json:"id,omitempty"`
	Role    MessageRole `json:"role,omitempty"`
	Model   string      `json:"model,omitempty"`
	Usage   *LLMUsage   `json:"usage,omitempty"`
	Details any         `json:"content,omitempty"`
}

// FromOpenAI convert response from openai
func (r *LLMResponse) FromOpenAI(v *openai.ChatCompletionResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = v.Model
	usage := &LLMUsage{
		InputTokens:  int64(v.Usage.PromptTokens),
		OutputTokens: int64(v.Usage.CompletionTokens),
	}
	if r.Usage == nil {
		r.Usage = usage
	} else {
		r.Usage.Merge(usage)
	}
	r.Details = v.Choices
}

type LLMUsage struct {
	InputTokens  int64 `json:"input_tokens,omitempty"`
	OutputTokens int64 `json:"output_tokens,omitempty"`
}

func (u *LLMUsage) Merge(v *LLMUsage) {
	if v == nil {
		return
	}
	u.InputTokens += v.InputTokens
	u.OutputTokens += v.OutputTokens
}

func (u LLMUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}
