// Package voice turns spoken thoughts into a draft journal entry: capture a
// transcript from a recognizer, distil it, and hold the result until the user
// confirms, refines or discards it.
package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/architect/internal/logger"
)

var (
	ErrCapturing    = errors.New("voice capture already active")
	ErrNotCapturing = errors.New("voice capture is not active")
	// ErrDiscarded is returned by Stop when the capture was discarded while
	// its transcript was being distilled.
	ErrDiscarded = errors.New("voice capture discarded")
)

type State int

const (
	Idle State = iota
	Capturing
	Distilling
	AwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Distilling:
		return "distilling"
	case AwaitingConfirmation:
		return "awaiting-confirmation"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	StatusStarting      = "Starting..."
	StatusListening     = "🎤 Listening... Speak now"
	StatusGotIt         = "✓ Got it! Keep talking or stop."
	StatusDistilling    = "✨ Distilling your thoughts..."
	StatusFailedToStart = "⚠️ Failed to start."
)

// Fragment is one recognition result. Interim fragments carry partial text
// that may still change; final fragments are committed to the transcript.
type Fragment struct {
	Text  string
	Final bool
	Err   error
}

// Recognizer is a speech-to-text source. Start begins a capture whose
// fragments arrive on the returned channel; the channel is closed when the
// capture ends for any reason.
type Recognizer interface {
	Start(ctx context.Context) (<-chan Fragment, error)
	Stop() error
}

// Distiller rewrites a raw transcript into clean prose.
type Distiller interface {
	Distill(ctx context.Context, transcript string) (string, error)
}

// Draft is the text handed to the composer once a capture is accepted.
type Draft struct {
	Text string
	// Focus asks the composer to take focus for editing.
	Focus bool
}

// Pipeline is the capture/distil state machine. It is safe for concurrent use.
type Pipeline struct {
	rec        Recognizer
	dist       Distiller
	continuous bool
	statusTTL  time.Duration
	now        func() time.Time
	notify     func()
	log        *log.Logger

	mu            sync.Mutex
	state         State
	listening     bool
	gen           int
	transcript    strings.Builder
	pending       string
	status        string
	statusExpires time.Time
}

type Option func(*Pipeline)

// WithContinuous restarts the recognizer when a capture ends on its own
// while the user is still listening.
func WithContinuous(v bool) Option {
	return func(p *Pipeline) { p.continuous = v }
}

// WithStatusTTL sets how long capture error messages stay visible.
func WithStatusTTL(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.statusTTL = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithNotify registers a callback run after every state or status change.
// It is called without the pipeline lock held.
func WithNotify(fn func()) Option {
	return func(p *Pipeline) { p.notify = fn }
}

func New(rec Recognizer, dist Distiller, opts ...Option) *Pipeline {
	p := &Pipeline{
		rec:        rec,
		dist:       dist,
		continuous: true,
		statusTTL:  3 * time.Second,
		now:        time.Now,
		log:        logger.Named("voice"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) changed() {
	if p.notify != nil {
		p.notify()
	}
}

// setStatus must be called with mu held. A zero ttl keeps the status until
// it is replaced.
func (p *Pipeline) setStatus(s string, ttl time.Duration) {
	p.status = s
	p.statusExpires = time.Time{}
	if ttl > 0 {
		p.statusExpires = p.now().Add(ttl)
	}
}

// Start begins a new capture. Any draft awaiting confirmation is dropped.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state == Capturing || p.state == Distilling {
		p.mu.Unlock()
		return ErrCapturing
	}
	p.gen++
	gen := p.gen
	p.state = Capturing
	p.listening = true
	p.transcript.Reset()
	p.pending = ""
	p.setStatus(StatusStarting, 0)
	p.mu.Unlock()
	p.changed()

	ch, err := p.rec.Start(ctx)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		if err == nil {
			_ = p.rec.Stop()
		}
		return ErrDiscarded
	}
	if err != nil {
		p.state = Idle
		p.listening = false
		p.setStatus(StatusFailedToStart, p.statusTTL)
		p.mu.Unlock()
		p.changed()
		return fmt.Errorf("failed to start voice capture: %w", err)
	}
	p.setStatus(StatusListening, 0)
	p.mu.Unlock()
	p.changed()

	go p.consume(ctx, gen, ch)
	return nil
}

func (p *Pipeline) consume(ctx context.Context, gen int, ch <-chan Fragment) {
	for f := range ch {
		p.mu.Lock()
		if gen != p.gen || p.state != Capturing {
			p.mu.Unlock()
			continue
		}
		switch {
		case f.Err != nil:
			p.state = Idle
			p.listening = false
			p.setStatus(StatusFor(f.Err), p.statusTTL)
			p.mu.Unlock()
			p.log.Warn("Voice capture failed", "error", f.Err)
			_ = p.rec.Stop()
			p.changed()
			continue
		case f.Final && strings.TrimSpace(f.Text) != "":
			p.transcript.WriteString(f.Text + " ")
			p.setStatus(StatusGotIt, 0)
		case f.Text != "":
			p.setStatus("🎤 "+f.Text, 0)
		}
		p.mu.Unlock()
		p.changed()
	}
	p.ended(ctx, gen)
}

// ended handles a fragment stream that closed on its own.
func (p *Pipeline) ended(ctx context.Context, gen int) {
	p.mu.Lock()
	if gen != p.gen || p.state != Capturing {
		p.mu.Unlock()
		return
	}
	if !p.listening || !p.continuous {
		p.state = Idle
		p.listening = false
		p.setStatus("", 0)
		p.mu.Unlock()
		p.changed()
		return
	}
	p.mu.Unlock()

	ch, err := p.rec.Start(ctx)

	p.mu.Lock()
	if gen != p.gen || p.state != Capturing {
		p.mu.Unlock()
		if err == nil {
			_ = p.rec.Stop()
		}
		return
	}
	if err != nil {
		p.log.Debug("Recognizer restart failed", "error", err)
		p.state = Idle
		p.listening = false
		p.setStatus("", 0)
		p.mu.Unlock()
		p.changed()
		return
	}
	p.mu.Unlock()
	p.log.Debug("Recognizer restarted")
	go p.consume(ctx, gen, ch)
}

// Stop ends the capture and distils the accumulated transcript. A blank
// transcript returns to Idle with an empty draft. When distillation fails
// the raw transcript is offered instead.
func (p *Pipeline) Stop(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != Capturing {
		p.mu.Unlock()
		return "", ErrNotCapturing
	}
	p.gen++
	gen := p.gen
	p.listening = false
	raw := strings.TrimSpace(p.transcript.String())
	if raw == "" {
		p.state = Idle
		p.setStatus("", 0)
	} else {
		p.state = Distilling
		p.setStatus(StatusDistilling, 0)
	}
	p.mu.Unlock()

	if err := p.rec.Stop(); err != nil {
		p.log.Debug("Recognizer stop failed", "error", err)
	}
	p.changed()
	if raw == "" {
		return "", nil
	}

	text := raw
	if p.dist != nil {
		distilled, err := p.dist.Distill(ctx, raw)
		switch {
		case err != nil:
			p.log.Warn("Distillation failed, using raw transcript", "error", err)
		case strings.TrimSpace(distilled) == "":
			p.log.Warn("Distillation returned no text, using raw transcript")
		default:
			text = strings.TrimSpace(distilled)
		}
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return "", ErrDiscarded
	}
	p.state = AwaitingConfirmation
	p.pending = text
	p.setStatus("", 0)
	p.mu.Unlock()
	p.changed()
	return text, nil
}

func (p *Pipeline) take(focus bool) (Draft, bool) {
	p.mu.Lock()
	if p.state != AwaitingConfirmation {
		p.mu.Unlock()
		return Draft{}, false
	}
	d := Draft{Text: p.pending, Focus: focus}
	p.pending = ""
	p.transcript.Reset()
	p.state = Idle
	p.mu.Unlock()
	p.changed()
	return d, true
}

// Confirm accepts the pending draft as-is.
func (p *Pipeline) Confirm() (Draft, bool) { return p.take(false) }

// Refine accepts the pending draft for further editing.
func (p *Pipeline) Refine() (Draft, bool) { return p.take(true) }

// Discard halts any capture and drops all pending text. In-flight
// distillation results are ignored.
func (p *Pipeline) Discard() {
	p.mu.Lock()
	wasCapturing := p.state == Capturing
	p.gen++
	p.state = Idle
	p.listening = false
	p.transcript.Reset()
	p.pending = ""
	p.setStatus("", 0)
	p.mu.Unlock()

	if wasCapturing {
		_ = p.rec.Stop()
	}
	p.changed()
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Listening reports whether the user intends capture to continue.
func (p *Pipeline) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listening
}

// Status is the current status line. Error statuses expire after the TTL.
func (p *Pipeline) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.statusExpires.IsZero() && !p.now().Before(p.statusExpires) {
		return ""
	}
	return p.status
}

// Transcript is the text captured so far.
func (p *Pipeline) Transcript() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcript.String()
}

// Pending is the draft awaiting confirmation.
func (p *Pipeline) Pending() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}
