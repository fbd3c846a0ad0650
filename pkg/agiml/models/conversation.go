package models

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the state a chat pipeline hands to a Middleware once before
// the model call and once after it.
type Conversation struct {
	ID          string         `json:"id,omitempty"`
	Messages    []Message      `json:"messages"`
	UserMessage string         `json:"userMessage"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	// Response is nil until the model has answered.
	Response *string `json:"response,omitempty"`
}

// Middleware rewrites a Conversation around a model call.
type Middleware interface {
	Name() string
	BeforeRequest(ctx context.Context, conv Conversation) (Conversation, error)
	AfterResponse(ctx context.Context, conv Conversation) (Conversation, error)
}

// FirstSystemMessage returns the first encountered Message with role 'system'
// and its index.
func (c *Conversation) FirstSystemMessage() (Message, int, error) {
	for i, msg := range c.Messages {
		if msg.Role == RoleSystem {
			return msg, i, nil
		}
	}
	return Message{}, -1, errors.New("failed to find any system message")
}

// HasResponse reports whether the model has produced any output.
func (c *Conversation) HasResponse() bool {
	return c.Response != nil && *c.Response != ""
}

// Clone returns a copy which shares no slices or maps with c.
func (c Conversation) Clone() Conversation {
	ret := c
	if c.Messages != nil {
		ret.Messages = make([]Message, len(c.Messages))
		copy(ret.Messages, c.Messages)
	}
	if c.Metadata != nil {
		ret.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			ret.Metadata[k] = v
		}
	}
	if c.Response != nil {
		r := *c.Response
		ret.Response = &r
	}
	return ret
}
