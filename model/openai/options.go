package openai

import (
	openaiopt "github.com/openai/openai-go/option"
)

// options contains configuration options for the OpenAI model.
type options struct {
	// APIKey is the API key used to authenticate requests.
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for GitHub Models or
	// Azure OpenAI deployments.
	BaseURL string
	// ChannelBufferSize is the buffer size of the response channel.
	ChannelBufferSize int
	// OpenAIOptions are extra request options passed to the underlying client.
	OpenAIOptions []openaiopt.RequestOption
}

var defaultOptions = options{
	ChannelBufferSize: 1,
}

// Option configures the OpenAI model.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.APIKey = key
	}
}

// WithBaseURL sets the base URL for the API.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.BaseURL = url
	}
}

// WithChannelBufferSize sets the buffer size of the response channel.
func WithChannelBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.ChannelBufferSize = size
		}
	}
}

// WithOpenAIOptions appends extra request options for the underlying client.
func WithOpenAIOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) {
		o.OpenAIOptions = append(o.OpenAIOptions, opts...)
	}
}
