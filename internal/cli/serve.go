package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/server"
)

// ServeCmd runs the distill proxy. The API key stays in this process.
type ServeCmd struct {
	Host    string `help:"Listen host (overrides server.host)."`
	Port    int    `help:"Listen port (overrides server.port)."`
	Metrics bool   `help:"Expose /metrics even if server.metrics is off."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	conf := ctx.config().Server
	if c.Host != "" {
		conf.Host = c.Host
	}
	if c.Port > 0 {
		conf.Port = c.Port
	}
	if c.Metrics {
		conf.Metrics = true
	}

	client, err := NewOpenAIClient(ctx.config())
	if err != nil {
		return fmt.Errorf("the distill server needs an API key: %w", err)
	}

	srv := server.New(client, conf)
	logger.Info("Starting distill server", "addr", srv.Addr(), "model", client.Model(), "metrics", conf.Metrics)
	ctx.printf("Distill server listening on http://%s\n", srv.Addr())

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(sigCtx)
}
