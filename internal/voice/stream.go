package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/julianstephens/architect/internal/completion"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/prompts"
)

// Source opens one capture's worth of recognizer output.
type Source func(ctx context.Context) (io.ReadCloser, error)

// StreamRecognizer reads recognition results line by line from an external
// speech-to-text process. Each line is either a JSON object
// {"text": "...", "final": true} / {"error": "no-speech"} or plain text,
// which is treated as a final fragment.
type StreamRecognizer struct {
	open Source

	mu  sync.Mutex
	cur io.ReadCloser
}

func NewStreamRecognizer(open Source) *StreamRecognizer {
	return &StreamRecognizer{open: open}
}

type streamLine struct {
	Text  string `json:"text"`
	Final *bool  `json:"final"`
	Error string `json:"error"`
}

func (r *StreamRecognizer) Start(ctx context.Context) (<-chan Fragment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil {
		return nil, ErrCapturing
	}
	rc, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	r.cur = rc

	ch := make(chan Fragment)
	go func() {
		defer close(ch)
		defer r.release(rc)

		sc := bufio.NewScanner(rc)
		for sc.Scan() {
			f, ok := ParseLine(sc.Text())
			if !ok {
				continue
			}
			select {
			case ch <- f:
			case <-ctx.Done():
				return
			}
			if f.Err != nil {
				return
			}
		}
		if err := sc.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) && !errors.Is(err, io.EOF) && !r.stopped(rc) {
			select {
			case ch <- Fragment{Err: &CaptureError{Code: CodeAudioCapture}}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

func (r *StreamRecognizer) stopped(rc io.ReadCloser) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cur != rc
}

func (r *StreamRecognizer) release(rc io.ReadCloser) {
	r.mu.Lock()
	if r.cur == rc {
		r.cur = nil
	}
	r.mu.Unlock()
	_ = rc.Close()
}

// Stop closes the current source, which ends its fragment stream.
func (r *StreamRecognizer) Stop() error {
	r.mu.Lock()
	rc := r.cur
	r.cur = nil
	r.mu.Unlock()
	if rc == nil {
		return nil
	}
	return rc.Close()
}

// ParseLine decodes one line of recognizer output. Blank lines report false.
func ParseLine(line string) (Fragment, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Fragment{}, false
	}
	if !strings.HasPrefix(line, "{") {
		return Fragment{Text: line, Final: true}, true
	}

	var sl streamLine
	if err := json.Unmarshal([]byte(line), &sl); err != nil {
		return Fragment{Text: line, Final: true}, true
	}
	if sl.Error != "" {
		return Fragment{Err: &CaptureError{Code: sl.Error}}, true
	}
	if sl.Text == "" {
		return Fragment{}, false
	}
	final := sl.Final == nil || *sl.Final
	return Fragment{Text: sl.Text, Final: final}, true
}

// CommandSource runs name with args for each capture and reads its stdout.
// Closing the source kills the process.
func CommandSource(name string, args ...string) Source {
	return func(ctx context.Context) (io.ReadCloser, error) {
		cmd := exec.CommandContext(ctx, name, args...)
		out, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err := cmd.Start(); err != nil {
			return nil, &CaptureError{Code: CodeAudioCapture}
		}
		return &processReader{ReadCloser: out, cmd: cmd}, nil
	}
}

type processReader struct {
	io.ReadCloser
	cmd  *exec.Cmd
	once sync.Once
}

func (p *processReader) Close() error {
	p.once.Do(func() {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
		_ = p.cmd.Wait()
	})
	return nil
}

// ServiceDistiller distils transcripts with a completion service directly.
type ServiceDistiller struct {
	Service   completion.Service
	MaxTokens int
}

func (d ServiceDistiller) Distill(ctx context.Context, transcript string) (string, error) {
	maxTokens := d.MaxTokens
	if maxTokens <= 0 {
		maxTokens = constants.DistillMaxTokens
	}
	text, err := d.Service.Complete(ctx, completion.Request{
		Prompt:    prompts.Distill(transcript),
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("distillation failed: %w", err)
	}
	return text, nil
}
