package components

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/schema"
)

func TestMessageConversions(t *testing.T) {
	assistant := NewMessage(AssistantRole, schema.String("hello"))
	user := NewMessage(UserRole, schema.String("hi"))

	var cohereMsg cohere.Message
	assistant.ToCohere(&cohereMsg)
	assert.Equal(t, "CHATBOT", cohereMsg.Role)
	require.NotNil(t, cohereMsg.Chatbot)
	assert.Equal(t, "hello", cohereMsg.Chatbot.Message)

	var openaiMsg openai.ChatCompletionMessage
	user.ToOpenAI(&openaiMsg)
	assert.Equal(t, openai.ChatMessageRoleUser, openaiMsg.Role)
	assert.Equal(t, "hi", openaiMsg.Content)

	var anthropicMsg anthropic.Message
	user.ToAnthropic(&anthropicMsg)
	assert.Equal(t, anthropic.RoleUser, anthropicMsg.Role)
	require.Len(t, anthropicMsg.Content, 1)
	assert.Equal(t, "hi", anthropicMsg.Content[0].GetText())

	var bedrockMsg types.Message
	assistant.ToBedrock(&bedrockMsg)
	assert.Equal(t, types.ConversationRoleAssistant, bedrockMsg.Role)
	require.Len(t, bedrockMsg.Content, 1)
	text, ok := bedrockMsg.Content[0].(*types.ContentBlockMemberText)
	require.True(t, ok)
	assert.Equal(t, "hello", text.Value)
}
