// Package journal owns the user's entries and profile in memory and runs
// the journaling session: entry submission, the mentor's reply and the
// follow-up conversation.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/architect/internal/completion"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/models"
	"github.com/julianstephens/architect/internal/prompts"
)

var (
	// ErrEmptyInput is returned for blank entries and replies. Callers treat it as a no-op.
	ErrEmptyInput = errors.New("input is empty")
	// ErrBusy is returned while a submission or reply is in flight.
	ErrBusy = errors.New("a request is already in flight")
	// ErrNoConversation is returned by a reply before any entry was submitted.
	ErrNoConversation = errors.New("no conversation to reply to")
	// ErrSessionOpen is returned when an entry is submitted while a
	// conversation is still showing. Start a new session first.
	ErrSessionOpen = errors.New("a conversation is open, start a new session first")
)

type State int

const (
	Composing State = iota
	Submitting
	Responding
	ReplySubmitting
)

func (s State) String() string {
	switch s {
	case Composing:
		return "composing"
	case Submitting:
		return "submitting"
	case Responding:
		return "responding"
	case ReplySubmitting:
		return "reply-submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Response is the mentor's answer to a submission or reply.
type Response struct {
	Text string
	// Degraded is set when the completion failed and Text is the fallback line.
	Degraded bool
	// Stale is set when the session was replaced while the request was in
	// flight. The text is not shown; a submitted entry is still saved.
	Stale     bool
	SessionID string
	Entry     *models.Entry
	// PersistErr is the storage failure, if any, from saving the entry.
	PersistErr error
}

// CaptureHalter stops any voice capture and drops its pending transcript.
type CaptureHalter interface {
	Discard()
}

// Controller runs one journaling session at a time.
type Controller struct {
	book      *Book
	svc       completion.Service
	maxTokens int
	voice     CaptureHalter
	log       *log.Logger

	mu        sync.Mutex
	state     State
	sessionID string
	history   []models.ConversationTurn
	response  string
	degraded  bool
}

type ControllerOption func(*Controller)

func WithMaxTokens(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithCapture registers the voice pipeline halted by StartNewSession.
func WithCapture(h CaptureHalter) ControllerOption {
	return func(c *Controller) { c.voice = h }
}

func NewController(book *Book, svc completion.Service, opts ...ControllerOption) *Controller {
	c := &Controller{
		book:      book,
		svc:       svc,
		maxTokens: constants.DefaultMaxTokens,
		log:       logger.Named("journal"),
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCapture registers the voice pipeline after construction.
func (c *Controller) SetCapture(h CaptureHalter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voice = h
}

// SubmitEntry sends a new entry to the mentor and records it. A completion
// failure yields the fallback line with Degraded set; the entry is saved
// either way, and only after the completion resolves.
func (c *Controller) SubmitEntry(ctx context.Context, text string, category models.Category) (Response, error) {
	if strings.TrimSpace(text) == "" {
		return Response{}, ErrEmptyInput
	}
	if !category.Valid() {
		return Response{}, fmt.Errorf("invalid category %q", category)
	}

	c.mu.Lock()
	switch c.state {
	case Submitting, ReplySubmitting:
		c.mu.Unlock()
		return Response{}, ErrBusy
	case Responding:
		c.mu.Unlock()
		return Response{}, ErrSessionOpen
	}
	c.state = Submitting
	session := c.sessionID
	c.mu.Unlock()

	entry := c.book.NewEntry(text, category)
	prompt := prompts.Mentor(prompts.EntryInput{
		Text:     text,
		Category: category,
		Prior:    c.book.Recent(constants.RecentEntryContext),
		Profile:  c.book.Profile(),
	})

	reply, degraded := c.ask(ctx, prompt)

	entry, _, persistErr := c.book.AddEntry(ctx, entry)

	resp := Response{
		Text:       reply,
		Degraded:   degraded,
		SessionID:  session,
		Entry:      &entry,
		PersistErr: persistErr,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != session {
		c.log.Info("Discarding response for abandoned session", "session", session)
		resp.Stale = true
		return resp, nil
	}
	c.history = []models.ConversationTurn{
		{Role: models.RoleUser, Content: text, Category: category},
		{Role: models.RoleMentor, Content: reply},
	}
	c.response = reply
	c.degraded = degraded
	c.state = Responding
	return resp, nil
}

func (c *Controller) ask(ctx context.Context, prompt string) (string, bool) {
	text, err := c.svc.Complete(ctx, completion.Request{Prompt: prompt, MaxTokens: c.maxTokens})
	if err != nil {
		c.log.Warn("Mentor response failed, using fallback", "error", err)
		return constants.FallbackResponse, true
	}
	return text, false
}

// ReplyInConversation continues the open conversation one layer deeper. On
// failure the history is untouched and the error is returned so the user can
// retry. Replies are never persisted.
func (c *Controller) ReplyInConversation(ctx context.Context, text string) (Response, error) {
	if strings.TrimSpace(text) == "" {
		return Response{}, ErrEmptyInput
	}

	c.mu.Lock()
	if c.state == Submitting || c.state == ReplySubmitting {
		c.mu.Unlock()
		return Response{}, ErrBusy
	}
	if len(c.history) == 0 {
		c.mu.Unlock()
		return Response{}, ErrNoConversation
	}
	c.state = ReplySubmitting
	session := c.sessionID
	history := append([]models.ConversationTurn(nil), c.history...)
	c.mu.Unlock()

	prompt := prompts.Reply(prompts.ReplyInput{
		History: history,
		Reply:   text,
		Profile: c.book.Profile(),
	})
	reply, err := c.svc.Complete(ctx, completion.Request{Prompt: prompt, MaxTokens: c.maxTokens})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionID != session {
		return Response{Stale: true, SessionID: session}, nil
	}
	c.state = Responding
	if err != nil {
		c.log.Warn("Conversation reply failed", "error", err)
		return Response{SessionID: session}, fmt.Errorf("mentor reply failed: %w", err)
	}

	c.history = append(c.history,
		models.ConversationTurn{Role: models.RoleUser, Content: text},
		models.ConversationTurn{Role: models.RoleMentor, Content: reply},
	)
	c.response = reply
	c.degraded = false
	return Response{Text: reply, SessionID: session}, nil
}

// StartNewSession resets the composer state unconditionally and halts voice
// capture. Requests still in flight resolve against the old session id and
// are discarded.
func (c *Controller) StartNewSession() string {
	c.mu.Lock()
	c.sessionID = uuid.NewString()
	c.state = Composing
	c.history = nil
	c.response = ""
	c.degraded = false
	voice := c.voice
	id := c.sessionID
	c.mu.Unlock()

	if voice != nil {
		voice.Discard()
	}
	return id
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy mirrors the disabled submit button.
func (c *Controller) Busy() bool {
	s := c.State()
	return s == Submitting || s == ReplySubmitting
}

func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// History returns a copy of the session's turns.
func (c *Controller) History() []models.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ConversationTurn(nil), c.history...)
}

// CurrentResponse is the latest mentor text and whether it is the fallback.
func (c *Controller) CurrentResponse() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.response, c.degraded
}

func (c *Controller) Book() *Book { return c.book }
