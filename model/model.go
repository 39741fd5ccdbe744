// Package model provides interfaces for working with chat completion models.
package model

import "context"

// Info describes a model instance.
type Info struct {
	// Name is the model name.
	Name string
}

// Model is the interface for all language models. The model is stateless
// between calls: everything it needs, including the full conversation
// history and the available tool declarations, travels in the Request.
type Model interface {
	Info() Info
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)
}
