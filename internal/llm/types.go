package llm

import "context"

type Provider interface {
	// Invoke sends a prompt and returns the model's text reply.
	// Implementations bound the call with their configured timeout.
	Invoke(ctx context.Context, prompt string, opts ...Option) (string, error)
}

type Option func(*Options)

type Options struct {
	Model        string
	MaxTokens    int64
	Temperature  float64
	SystemPrompt string
}

func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithMaxTokens(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

func WithTemperature(t float64) Option {
	return func(o *Options) {
		if t != 0 {
			o.Temperature = t
		}
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		if prompt != "" {
			o.SystemPrompt = prompt
		}
	}
}
