package components

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// LLMResponse gateway provider chat response
type LLMResponse struct {
	ID        string      `json:"id,omitempty"`
	Role      MessageRole `json:"role,omitempty"`
	Model     string      `json:"model,omitempty"`
	Usage     *LLMUsage   `json:"usage,omitempty"`
	Timestamp int64       `json:"ts,omitempty"`
	// ToolCalls is the trace of capabilities invoked while generating
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Details   any        `json:"content,omitempty"`
}

// FromOpenAI convert response from openai
func (r *LLMResponse) FromOpenAI(v *openai.ChatCompletionResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = v.Model
	r.Timestamp = v.Created
	r.mergeUsage(&LLMUsage{
		InputTokens:  int64(v.Usage.PromptTokens),
		OutputTokens: int64(v.Usage.CompletionTokens),
	})
	r.Details = v.Choices
}

// FromAnthropic convert response from anthropic
func (r *LLMResponse) FromAnthropic(v *anthropic.MessagesResponse) {
	r.ID = v.ID
	r.Role = AssistantRole
	r.Model = string(v.Model)
	r.Timestamp = time.Now().Unix()
	r.mergeUsage(&LLMUsage{
		InputTokens:  int64(v.Usage.InputTokens),
		OutputTokens: int64(v.Usage.OutputTokens),
	})
	r.Details = v.Content
}

// FromCohere convert response from cohere
func (r *LLMResponse) FromCohere(v *cohere.NonStreamedChatResponse) {
	if v.GenerationId != nil {
		r.ID = *v.GenerationId
	}
	r.Role = AssistantRole
	r.Timestamp = time.Now().Unix()
	if meta := v.Meta; meta != nil {
		if usage := meta.Tokens; usage != nil {
			u := new(LLMUsage)
			if usage.InputTokens != nil {
				u.InputTokens = int64(*usage.InputTokens)
			}
			if usage.OutputTokens != nil {
				u.OutputTokens = int64(*usage.OutputTokens)
			}
			r.mergeUsage(u)
		}
		if version := meta.ApiVersion; version != nil {
			r.Model = version.Version
		}
	}
	r.Details = v.Text
}

// FromBedrock convert response from bedrock converse api
func (r *LLMResponse) FromBedrock(model string, v *bedrockruntime.ConverseOutput) {
	r.Role = AssistantRole
	r.Model = model
	r.Timestamp = time.Now().Unix()
	if usage := v.Usage; usage != nil {
		r.mergeUsage(&LLMUsage{
			InputTokens:  int64(aws.ToInt32(usage.InputTokens)),
			OutputTokens: int64(aws.ToInt32(usage.OutputTokens)),
		})
	}
	r.Details = v.StopReason
}

// AddToolCall appends a capability invocation to the trace
func (r *LLMResponse) AddToolCall(call ToolCall) {
	r.ToolCalls = append(r.ToolCalls, call)
}

func (r *LLMResponse) mergeUsage(v *LLMUsage) {
	if r.Usage == nil {
		r.Usage = new(LLMUsage)
	}
	r.Usage.Merge(v)
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

// Total returns input plus output tokens
func (u *LLMUsage) Total() int64 {
	if u == nil {
		return 0
	}
	return u.InputTokens + u.OutputTokens
}
