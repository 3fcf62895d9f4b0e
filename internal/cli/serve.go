package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/suppleflow/internal/api"
)

type ServeCmd struct {
	Addr string `help:"Listen address, defaults to SUPPLEFLOW_HTTP_ADDR."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.HTTPAddr
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.printf("Serving the suppleflow API on %s\n", addr)
	return api.NewServer(svc).Run(runCtx, addr)
}
