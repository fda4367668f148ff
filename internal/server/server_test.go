package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/architect/internal/completion"
	"github.com/julianstephens/architect/internal/config"
)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   []completion.Request
	payload []byte
	err     error
}

func (f *fakeCompleter) RawComplete(_ context.Context, req completion.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.payload, f.err
}

func (f *fakeCompleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testConfig() config.Server {
	conf := config.Default().Server
	conf.Host = "127.0.0.1"
	conf.Port = 0
	return conf
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/distill", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp["error"]
}

const okPayload = `{"id":"chatcmpl-1","choices":[{"message":{"role":"assistant","content":"I want to ship."}}]}`

func TestDistillMethodNotAllowed(t *testing.T) {
	s := New(&fakeCompleter{}, testConfig())
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/distill", nil)
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		assert.Equal(t, "Method not allowed", decodeError(t, rr))
		assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	}
}

func TestDistillTranscriptRequired(t *testing.T) {
	fc := &fakeCompleter{payload: []byte(okPayload)}
	s := New(fc, testConfig())

	for _, body := range []string{`{}`, `{"transcript":""}`, `{"transcript":"   "}`, `{"transcript":42}`, `not json`, ``} {
		rr := post(t, s.Handler(), body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, "Transcript is required", decodeError(t, rr), body)
	}
	assert.Zero(t, fc.count())
}

func TestDistillSuccessRelaysPayload(t *testing.T) {
	fc := &fakeCompleter{payload: []byte(okPayload)}
	s := New(fc, testConfig())

	rr := post(t, s.Handler(), `{"transcript":"um so like I want to ship"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, okPayload, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	require.Equal(t, 1, fc.count())
	assert.Equal(t, 1000, fc.calls[0].MaxTokens)
	assert.Contains(t, fc.calls[0].Prompt, `"um so like I want to ship"`)
	assert.Contains(t, fc.calls[0].Prompt, "Remove all filler words")
}

func TestDistillCache(t *testing.T) {
	fc := &fakeCompleter{payload: []byte(okPayload)}
	s := New(fc, testConfig())
	h := s.Handler()

	first := post(t, h, `{"transcript":"same words"}`)
	second := post(t, h, `{"transcript":"same words"}`)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, fc.count())

	noCache := testConfig()
	noCache.CacheSizeMB = 0
	fc2 := &fakeCompleter{payload: []byte(okPayload)}
	h2 := New(fc2, noCache).Handler()
	post(t, h2, `{"transcript":"same words"}`)
	post(t, h2, `{"transcript":"same words"}`)
	assert.Equal(t, 2, fc2.count())
}

func TestDistillUpstreamErrorRelayed(t *testing.T) {
	upstream := `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`
	fc := &fakeCompleter{err: &completion.Error{StatusCode: http.StatusUnauthorized, Body: upstream}}
	s := New(fc, testConfig())

	rr := post(t, s.Handler(), `{"transcript":"hello"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":`+upstream+`}`, rr.Body.String())

	fc.err = &completion.Error{StatusCode: http.StatusBadGateway, Body: "bad gateway"}
	rr = post(t, s.Handler(), `{"transcript":"hello again"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "bad gateway", decodeError(t, rr))
}

func TestDistillTransportFailure(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("dial tcp: connection refused")}
	s := New(fc, testConfig())

	rr := post(t, s.Handler(), `{"transcript":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rr))
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestDistillBodyLimit(t *testing.T) {
	conf := testConfig()
	conf.MaxBodyBytes = 32
	s := New(&fakeCompleter{payload: []byte(okPayload)}, conf)

	rr := post(t, s.Handler(), `{"transcript":"`+strings.Repeat("a", 100)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealth(t *testing.T) {
	s := New(&fakeCompleter{}, testConfig())

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(&fakeCompleter{payload: []byte(okPayload)}, testConfig())
	h := s.Handler()
	post(t, h, `{"transcript":"measure me"}`)
	post(t, h, `{"transcript":"measure me"}`)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `architect_requests_total{endpoint="/api/distill",status="2xx"} 2`)
	assert.Contains(t, body, "architect_cache_hits_total 1")
	assert.Contains(t, body, "architect_cache_misses_total 1")

	conf := testConfig()
	conf.Metrics = false
	rr = httptest.NewRecorder()
	New(&fakeCompleter{}, conf).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.NotEqual(t, http.StatusOK, rr.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(&fakeCompleter{payload: []byte(okPayload)}, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/distill"
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Post(url, "application/json", strings.NewReader(`{"transcript":"live"}`))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, okPayload, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestProxyClientAgainstServer(t *testing.T) {
	s := New(&fakeCompleter{payload: []byte(okPayload)}, testConfig())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	text, err := completion.NewProxyClient(ts.URL, ts.Client()).Distill(context.Background(), "um I want to ship")
	require.NoError(t, err)
	assert.Equal(t, "I want to ship.", text)
}
