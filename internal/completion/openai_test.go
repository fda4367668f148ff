package completion

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okPayload = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1718031600,
  "model": "test-model",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  What are you protecting?  "}}]
}`

type capturedRequest struct {
	Path      string
	Auth      string
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
			captured.Path = r.URL.Path
			captured.Auth = r.Header.Get("Authorization")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *OpenAI {
	t.Helper()
	opts = append([]Option{WithBaseURL(baseURL), WithMaxRetries(0), WithModel("test-model")}, opts...)
	c, err := NewOpenAI("sk-test", opts...)
	require.NoError(t, err)
	return c
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAI("")
	assert.True(t, errors.Is(err, ErrNoAPIKey))

	t.Setenv("OPENAI_API_KEY", "sk-env")
	c, err := NewOpenAI("")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", c.apiKey)
}

func TestNewOpenAIBaseURLFromEnv(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	c, err := NewOpenAI("sk-test")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/v1", c.BaseURL())

	c, err = NewOpenAI("sk-test", WithBaseURL("http://explicit/v1"))
	require.NoError(t, err)
	assert.Equal(t, "http://explicit/v1", c.BaseURL())
}

func TestComplete(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, okPayload, &got)
	c := newTestClient(t, srv.URL+"/v1")

	text, err := c.Complete(context.Background(), Request{Prompt: "hello", MaxTokens: 321})
	require.NoError(t, err)

	assert.Equal(t, "What are you protecting?", text)
	assert.Equal(t, "/v1/chat/completions", got.Path)
	assert.Equal(t, "Bearer sk-test", got.Auth)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 321, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestCompleteDefaultMaxTokens(t *testing.T) {
	var got capturedRequest
	srv := newTestServer(t, http.StatusOK, okPayload, &got)
	c := newTestClient(t, srv.URL+"/v1", WithDefaultMaxTokens(77))

	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, 77, got.MaxTokens)
}

func TestCompleteUpstreamError(t *testing.T) {
	body := `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key","param":null}}`
	srv := newTestServer(t, http.StatusUnauthorized, body, nil)
	c := newTestClient(t, srv.URL+"/v1")

	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusUnauthorized, cerr.StatusCode)
	assert.JSONEq(t, body, cerr.Body)
	assert.Contains(t, cerr.Error(), "401")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil)
	c := newTestClient(t, srv.URL+"/v1")

	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestCompleteTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url+"/v1")
	_, err := c.Complete(context.Background(), Request{Prompt: "hello"})
	require.Error(t, err)

	var cerr *Error
	assert.False(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), "completion request failed")
}

func TestRawComplete(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, okPayload, nil)
	c := newTestClient(t, srv.URL+"/v1")

	raw, err := c.RawComplete(context.Background(), Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, okPayload, string(raw))

	text, err := ExtractText(raw)
	require.NoError(t, err)
	assert.Equal(t, "What are you protecting?", text)
}

func TestFuncAndUnavailable(t *testing.T) {
	var svc Service = Func(func(_ context.Context, req Request) (string, error) {
		return strings.ToUpper(req.Prompt), nil
	})
	out, err := svc.Complete(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "HI", out)

	boom := errors.New("offline")
	_, err = Unavailable(boom).Complete(context.Background(), Request{})
	assert.Equal(t, boom, err)
}
