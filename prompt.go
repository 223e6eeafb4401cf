package gomistral

import "github.com/teilomillet/gomistral/providers"

// Prompt is a chat prompt: an optional system prompt, prior conversation
// turns, and the user input for this call.
type Prompt struct {
	Input        string
	SystemPrompt string
	History      []providers.Message
}

// PromptOption configures a Prompt at construction time.
type PromptOption func(*Prompt)

// NewPrompt creates a Prompt for the given user input.
func NewPrompt(input string, opts ...PromptOption) *Prompt {
	p := &Prompt{Input: input}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithSystemPrompt sets the system prompt sent before the conversation.
func WithSystemPrompt(prompt string) PromptOption {
	return func(p *Prompt) {
		p.SystemPrompt = prompt
	}
}

// WithHistory sets prior conversation turns, oldest first.
func WithHistory(messages ...providers.Message) PromptOption {
	return func(p *Prompt) {
		p.History = messages
	}
}

// toMessages flattens the prompt into the wire message list.
func (p *Prompt) toMessages() []providers.Message {
	messages := make([]providers.Message, 0, len(p.History)+2)
	if p.SystemPrompt != "" {
		messages = append(messages, providers.Message{Role: "system", Content: p.SystemPrompt})
	}
	messages = append(messages, p.History...)
	if p.Input != "" {
		messages = append(messages, providers.Message{Role: "user", Content: p.Input})
	}
	return messages
}
