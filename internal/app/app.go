// Package app ties the journal, profile, onboarding and voice components
// together behind a single navigation state machine.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/onboarding"
	"github.com/julianstephens/architect/internal/profile"
	"github.com/julianstephens/architect/internal/voice"
)

// ErrInvalidTransition is returned for an action the current view does not offer.
var ErrInvalidTransition = errors.New("invalid transition")

type View int

const (
	Loading View = iota
	Onboarding
	Home
	Profile
	Journal
	History
)

func (v View) String() string {
	switch v {
	case Loading:
		return "loading"
	case Onboarding:
		return "onboarding"
	case Home:
		return "home"
	case Profile:
		return "profile"
	case Journal:
		return "journal"
	case History:
		return "history"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

type Action int

const (
	FinishOnboarding Action = iota
	OpenJournal
	OpenHistory
	OpenProfile
	// NewEntry starts a fresh session from the journal itself.
	NewEntry
	Back
	ResetProfile
	DeleteAccount
)

func (a Action) String() string {
	switch a {
	case FinishOnboarding:
		return "finish-onboarding"
	case OpenJournal:
		return "open-journal"
	case OpenHistory:
		return "open-history"
	case OpenProfile:
		return "open-profile"
	case NewEntry:
		return "new-entry"
	case Back:
		return "back"
	case ResetProfile:
		return "reset-profile"
	case DeleteAccount:
		return "delete-account"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Transition returns the view reached from v by a. Every pair not listed is
// rejected with ErrInvalidTransition.
func Transition(v View, a Action) (View, error) {
	switch v {
	case Onboarding:
		if a == FinishOnboarding {
			return Home, nil
		}
	case Home:
		switch a {
		case OpenJournal:
			return Journal, nil
		case OpenHistory:
			return History, nil
		case OpenProfile:
			return Profile, nil
		}
	case Journal:
		switch a {
		case NewEntry:
			return Journal, nil
		case Back:
			return Home, nil
		}
	case History:
		if a == Back {
			return Home, nil
		}
	case Profile:
		switch a {
		case Back:
			return Home, nil
		case ResetProfile, DeleteAccount:
			return Onboarding, nil
		}
	}
	return v, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a, v)
}

// App is the running application state.
type App struct {
	book       *journal.Book
	journal    *journal.Controller
	profiles   *profile.Manager
	onboarding *onboarding.Machine
	voice      *voice.Pipeline
	view       View
}

// New wires the components around book. voice may be nil when no recognizer
// is configured.
func New(book *journal.Book, ctrl *journal.Controller, vp *voice.Pipeline) *App {
	profiles := profile.NewManager(book)
	if vp != nil {
		ctrl.SetCapture(vp)
	}
	return &App{
		book:       book,
		journal:    ctrl,
		profiles:   profiles,
		onboarding: onboarding.New(profiles),
		voice:      vp,
		view:       Loading,
	}
}

// Load reads the stored records and picks the first view. A new user, or an
// unreadable store, starts at onboarding; a returning user goes home once
// onboarding is complete.
func (a *App) Load(ctx context.Context) (View, error) {
	newUser, err := a.book.Load(ctx)
	switch {
	case err != nil:
		logger.Warn("Failed to load journal, starting onboarding", "error", err)
		a.view = Onboarding
		return a.view, err
	case newUser || !a.book.Profile().OnboardingComplete:
		a.view = Onboarding
	default:
		a.view = Home
	}
	return a.view, nil
}

func (a *App) View() View { return a.view }

// Do applies an action and its side effects. A failed reset or delete keeps
// the profile view so the user can retry.
func (a *App) Do(ctx context.Context, action Action) (View, error) {
	next, err := Transition(a.view, action)
	if err != nil {
		return a.view, err
	}

	switch action {
	case FinishOnboarding:
		if !a.onboarding.Complete() {
			return a.view, fmt.Errorf("%w: onboarding is not complete", ErrInvalidTransition)
		}
	case OpenJournal, NewEntry:
		a.journal.StartNewSession()
	case ResetProfile:
		if err := a.profiles.Reset(ctx); err != nil {
			return a.view, err
		}
		a.onboarding.Reset()
	case DeleteAccount:
		if err := a.profiles.Delete(ctx); err != nil {
			return a.view, err
		}
		a.onboarding.Reset()
	}

	logger.Debug("View changed", "from", a.view, "to", next, "action", action)
	a.view = next
	return a.view, nil
}

// AnswerOnboarding submits the current onboarding answer and moves home
// after the last one.
func (a *App) AnswerOnboarding(ctx context.Context, answer string) (View, error) {
	if a.view != Onboarding {
		return a.view, fmt.Errorf("%w: not onboarding", ErrInvalidTransition)
	}
	if _, err := a.onboarding.Submit(ctx, answer); err != nil {
		return a.view, err
	}
	if a.onboarding.Complete() {
		return a.Do(ctx, FinishOnboarding)
	}
	return a.view, nil
}

func (a *App) Book() *journal.Book             { return a.book }
func (a *App) Journal() *journal.Controller    { return a.journal }
func (a *App) Profiles() *profile.Manager      { return a.profiles }
func (a *App) Onboarding() *onboarding.Machine { return a.onboarding }
func (a *App) Voice() *voice.Pipeline          { return a.voice }
