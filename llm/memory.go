package llm

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/teilomillet/gomistral/internal/logging"
	"github.com/teilomillet/gomistral/providers"
)

// fallbackEncodingModel is used when no encoding is registered for the
// configured model name. Mistral models share no tiktoken registration,
// so this is the common path; the counts are an approximation used only
// for history budgeting.
const fallbackEncodingModel = "gpt-4o"

// MemoryMessage is a single message in the conversation history together
// with its token count.
type MemoryMessage struct {
	Role    string
	Content string
	Tokens  int
}

// Memory keeps conversation history within a token budget. Operations are
// thread-safe; when the budget is exceeded the oldest messages are dropped
// first.
type Memory struct {
	messages    []MemoryMessage
	mutex       sync.Mutex
	totalTokens int
	maxTokens   int
	encoding    *tiktoken.Tiktoken
	logger      logging.Logger
}

// NewMemory creates a Memory with the given token budget, using the token
// encoding registered for model (or the fallback encoding).
func NewMemory(maxTokens int, model string, logger logging.Logger) (*Memory, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Debug("no token encoding for model, using fallback", "model", model, "fallback", fallbackEncodingModel)
		encoding, err = tiktoken.EncodingForModel(fallbackEncodingModel)
		if err != nil {
			return nil, fmt.Errorf("failed to get fallback encoding: %w", err)
		}
	}

	return &Memory{
		messages:  []MemoryMessage{},
		maxTokens: maxTokens,
		encoding:  encoding,
		logger:    logger,
	}, nil
}

// Add appends a message to the history, truncating older messages if the
// token budget is exceeded.
func (m *Memory) Add(role, content string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	tokens := len(m.encoding.Encode(content, nil, nil))
	m.messages = append(m.messages, MemoryMessage{Role: role, Content: content, Tokens: tokens})
	m.totalTokens += tokens

	m.truncateLocked()
}

func (m *Memory) truncateLocked() {
	for m.totalTokens > m.maxTokens && len(m.messages) > 0 {
		removed := m.messages[0]
		m.messages = m.messages[1:]
		m.totalTokens -= removed.Tokens
		m.logger.Debug("truncated memory message", "role", removed.Role, "tokens", removed.Tokens)
	}
}

// Messages returns the current history as provider messages, oldest first.
func (m *Memory) Messages() []providers.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]providers.Message, len(m.messages))
	for i, msg := range m.messages {
		out[i] = providers.Message{Role: msg.Role, Content: msg.Content}
	}
	return out
}

// TotalTokens returns the current token count of the history.
func (m *Memory) TotalTokens() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.totalTokens
}

// Clear removes all messages from the history.
func (m *Memory) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.messages = m.messages[:0]
	m.totalTokens = 0
}
