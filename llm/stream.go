package llm

import (
	"bufio"
	"bytes"
	"context"
	"io"
)

// StreamToken represents a single token from the streaming response.
type StreamToken struct {
	// Text is the actual token text
	Text string

	// Type indicates the type of token (e.g., "text", "done", "error")
	Type string

	// Index is the position of this token in the sequence
	Index int

	// FinishReason is set on the final content token when the API
	// reported one
	FinishReason string
}

// TokenStream represents a stream of tokens from the model.
// It follows Go's io.ReadCloser pattern but with token-level granularity.
type TokenStream interface {
	// Next returns the next token in the stream.
	// When the stream is finished, it returns io.EOF.
	Next(context.Context) (*StreamToken, error)

	// Close releases any resources associated with the stream.
	io.Closer
}

// SSEDecoder handles Server-Sent Events (SSE) streaming.
type SSEDecoder struct {
	reader  *bufio.Scanner
	current Event
	err     error
}

type Event struct {
	Type string
	Data []byte
}

func NewSSEDecoder(reader io.Reader) *SSEDecoder {
	return &SSEDecoder{
		reader: bufio.NewScanner(reader),
	}
}

func (d *SSEDecoder) Next() bool {
	if d.err != nil {
		return false
	}

	event := ""
	data := bytes.NewBuffer(nil)

	for d.reader.Scan() {
		line := d.reader.Bytes()

		// Dispatch event on empty line
		if len(line) == 0 {
			if data.Len() == 0 && event == "" {
				continue
			}
			d.current = Event{
				Type: event,
				Data: bytes.TrimSuffix(data.Bytes(), []byte("\n")),
			}
			return true
		}

		// Split "field: value" into parts
		name, value, _ := bytes.Cut(line, []byte(":"))

		// Remove optional space after colon
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}

		switch string(name) {
		case "":
			continue // Skip comments
		case "event":
			event = string(value)
		case "data":
			data.Write(value)
			data.WriteRune('\n')
		}
	}

	// Flush a final event that was not followed by a blank line.
	if data.Len() > 0 || event != "" {
		d.current = Event{
			Type: event,
			Data: bytes.TrimSuffix(data.Bytes(), []byte("\n")),
		}
		d.err = io.EOF
		return true
	}

	return false
}

func (d *SSEDecoder) Event() Event {
	return d.current
}

func (d *SSEDecoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	if d.err != nil {
		return d.err
	}
	return d.reader.Err()
}
