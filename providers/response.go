package providers

import "encoding/json"

// Message is a single chat message sent to the API.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is a parsed chat completion.
type Response struct {
	Content      string
	Role         string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        *Usage
}

// StreamChunk is one parsed delta from a streaming response.
type StreamChunk struct {
	Content      string
	Role         string
	FinishReason string
	Usage        *Usage
}

// ToolCall is a request from the model to invoke a tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// chatCompletionResponse mirrors the Mistral chat-completions wire format.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			ToolCalls []ToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// chatCompletionChunk mirrors one SSE data payload of a streaming response.
type chatCompletionChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}
