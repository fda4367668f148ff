package completion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/julianstephens/architect/internal/constants"
)

// ProxyClient distils transcripts through an 'architect serve' instance so
// the API key never leaves the server.
type ProxyClient struct {
	url        string
	httpClient *http.Client
}

// NewProxyClient targets the distill endpoint at url. A bare origin such as
// http://host:8787 gets the default route appended.
func NewProxyClient(url string, httpClient *http.Client) *ProxyClient {
	url = strings.TrimRight(url, "/")
	if !strings.HasSuffix(url, constants.DefaultDistillRoute) {
		url += constants.DefaultDistillRoute
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.DefaultLLMTimeout + 5*time.Second}
	}
	return &ProxyClient{url: url, httpClient: httpClient}
}

type distillRequest struct {
	Transcript string `json:"transcript"`
}

// Distill posts the transcript and extracts the text from the relayed payload.
func (p *ProxyClient) Distill(ctx context.Context, transcript string) (string, error) {
	body, err := json.Marshal(distillRequest{Transcript: transcript})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("distill request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read distill response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{StatusCode: resp.StatusCode, Body: string(payload)}
	}
	return ExtractText(payload)
}

type chatPayload struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractText pulls the first choice's text out of a raw chat completion payload.
func ExtractText(payload []byte) (string, error) {
	var p chatPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", fmt.Errorf("failed to decode completion payload: %w", err)
	}
	if len(p.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(p.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
