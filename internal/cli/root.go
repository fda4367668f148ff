package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/architect/internal/app"
	"github.com/julianstephens/architect/internal/backup"
	"github.com/julianstephens/architect/internal/completion"
	"github.com/julianstephens/architect/internal/config"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/journal"
	"github.com/julianstephens/architect/internal/keyring"
	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/storage"
	"github.com/julianstephens/architect/internal/storage/sqlite"
	"github.com/julianstephens/architect/internal/streak"
	"github.com/julianstephens/architect/internal/voice"
)

type Context struct {
	Config *config.Config
	Store  storage.Provider
	// Completion overrides the configured LLM client. Tests set it.
	Completion completion.Service
	// Out receives command output; nil means stdout.
	Out io.Writer
	In  io.Reader

	app *app.App
}

func (c *Context) stdout() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

func (c *Context) stdin() io.Reader {
	if c.In != nil {
		return c.In
	}
	return os.Stdin
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.stdout(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.stdout(), args...)
}

func (c *Context) config() *config.Config {
	if c.Config == nil {
		c.Config = config.Default()
	}
	return c.Config
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// App builds the application around the loaded store on first use and loads
// the journal records.
func (c *Context) App(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := c.newApp()
	if err != nil {
		return nil, err
	}
	if _, err := a.Load(ctx); err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// newApp wires the components without loading.
func (c *Context) newApp() (*app.App, error) {
	conf := c.config()
	loc, err := conf.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	layout := conf.Journal.DateLayout

	book := journal.NewBook(storage.NewRepository(c.Store), streak.New(loc, layout), layout)
	svc := c.completionService()
	ctrl := journal.NewController(book, svc, journal.WithMaxTokens(conf.LLM.MaxTokens))
	return app.New(book, ctrl, c.voicePipeline(svc)), nil
}

func (c *Context) completionService() completion.Service {
	if c.Completion != nil {
		return c.Completion
	}
	client, err := NewOpenAIClient(c.config())
	if err != nil {
		logger.Warn("LLM client unavailable, mentor replies will use the fallback", "error", err)
		c.Completion = completion.Unavailable(err)
		return c.Completion
	}
	c.Completion = client
	return client
}

// NewOpenAIClient configures the completion client from conf with the
// resolved API key.
func NewOpenAIClient(conf *config.Config) (*completion.OpenAI, error) {
	return completion.NewOpenAI(ResolveAPIKey(),
		completion.WithModel(conf.LLM.Model),
		completion.WithBaseURL(conf.LLM.BaseURL),
		completion.WithTimeout(conf.LLM.Timeout),
		completion.WithMaxRetries(conf.LLM.MaxRetries),
		completion.WithDefaultMaxTokens(conf.LLM.MaxTokens),
		completion.WithTokenCounter(completion.NewTokenCounter(conf.LLM.Tokenizer)),
	)
}

// ResolveAPIKey looks for the LLM key in ARCHITECT_API_KEY, then the OS
// keyring. An empty result lets the client fall back to OPENAI_API_KEY.
func ResolveAPIKey() string {
	if key := strings.TrimSpace(os.Getenv(constants.EnvAPIKey)); key != "" {
		return key
	}
	key, err := keyring.GetAPIKey()
	if err != nil {
		logger.Debug("No API key in keyring", "error", err)
		return ""
	}
	return key
}

// voicePipeline is nil unless a speech-to-text command is configured.
// Distillation goes through the proxy when one is configured, otherwise
// straight to the completion service.
func (c *Context) voicePipeline(svc completion.Service) *voice.Pipeline {
	conf := c.config()
	fields := strings.Fields(conf.Voice.Command)
	if len(fields) == 0 {
		return nil
	}

	rec := voice.NewStreamRecognizer(voice.CommandSource(fields[0], fields[1:]...))
	var dist voice.Distiller = voice.ServiceDistiller{Service: svc}
	if conf.Voice.DistillURL != "" {
		dist = completion.NewProxyClient(conf.Voice.DistillURL, nil)
	}
	return voice.New(rec, dist,
		voice.WithContinuous(conf.Voice.Continuous),
		voice.WithStatusTTL(conf.Voice.StatusTTL),
	)
}

// flush retries any write that failed during the command so the process
// exits with the on-disk state matching memory where possible.
func (c *Context) flush(ctx context.Context) error {
	if c.app == nil || !c.app.Book().Dirty() {
		return nil
	}
	flushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.app.Book().Flush(flushCtx)
}
