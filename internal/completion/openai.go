package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/logger"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client     openai.Client
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	maxRetries int
	maxTokens  int
	counter    *TokenCounter
}

// Option configures an OpenAI client.
type Option func(*OpenAI)

// WithModel sets the model to use for completions.
func WithModel(model string) Option {
	return func(o *OpenAI) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at Azure OpenAI, a local model server or
// another compatible service.
func WithBaseURL(baseURL string) Option {
	return func(o *OpenAI) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *OpenAI) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(o *OpenAI) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithDefaultMaxTokens is used when a request leaves MaxTokens unset.
func WithDefaultMaxTokens(n int) Option {
	return func(o *OpenAI) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

func WithTokenCounter(c *TokenCounter) Option {
	return func(o *OpenAI) { o.counter = c }
}

// NewOpenAI creates a client. An empty apiKey falls back to OPENAI_API_KEY,
// and an unset base URL to OPENAI_BASE_URL.
func NewOpenAI(apiKey string, opts ...Option) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	o := &OpenAI{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      constants.DefaultLLMModel,
		timeout:    constants.DefaultLLMTimeout,
		maxRetries: 2,
		maxTokens:  constants.DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.baseURL == DefaultBaseURL {
		if env := os.Getenv("OPENAI_BASE_URL"); env != "" {
			o.baseURL = env
		}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		// The SDK resolves paths relative to the base URL, which needs a trailing slash.
		option.WithBaseURL(strings.TrimRight(o.baseURL, "/") + "/"),
		option.WithMaxRetries(o.maxRetries),
		option.WithRequestTimeout(o.timeout),
	}
	o.client = openai.NewClient(reqOpts...)

	return o, nil
}

// Model returns the configured model name.
func (o *OpenAI) Model() string { return o.model }

// BaseURL returns the endpoint the client talks to.
func (o *OpenAI) BaseURL() string { return o.baseURL }

func (o *OpenAI) send(ctx context.Context, req Request) (*openai.ChatCompletion, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = o.maxTokens
	}

	logger.Debug("Sending completion request",
		"model", o.model,
		"prompt_tokens_est", o.counter.Count(req.Prompt),
		"max_tokens", maxTokens)

	start := time.Now()
	var httpResp *http.Response
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
	}, option.WithResponseInto(&httpResp))
	if err != nil {
		if upstream := upstreamError(httpResp, err); upstream != nil {
			logger.Warn("Completion request rejected", "status", upstream.StatusCode)
			return nil, upstream
		}
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	logger.Debug("Completion received", "duration", time.Since(start), "choices", len(resp.Choices))
	return resp, nil
}

// Complete returns the first choice's text.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := o.send(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// RawComplete returns the upstream JSON payload untouched.
func (o *OpenAI) RawComplete(ctx context.Context, req Request) ([]byte, error) {
	resp, err := o.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return []byte(resp.RawJSON()), nil
}

// upstreamError turns a failed call that reached the server into *Error,
// keeping the response body verbatim. It returns nil for transport failures.
func upstreamError(res *http.Response, err error) *Error {
	if res != nil && res.StatusCode >= 400 && res.Body != nil {
		body, readErr := io.ReadAll(res.Body)
		if readErr == nil {
			return &Error{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
		}
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if body == "" {
			body = apiErr.Message
		}
		return &Error{StatusCode: apiErr.StatusCode, Body: body}
	}
	return nil
}
