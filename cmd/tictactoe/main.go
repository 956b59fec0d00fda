package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/jaminalder/timetravel-tic-tac-toe/internal/app"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/config"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/logging"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/tui"
	"github.com/jaminalder/timetravel-tic-tac-toe/internal/web"
)

const shutdownTimeout = 5 * time.Second

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"tictactoe.hcl" help:"Path to HCL configuration file."`
	LogLevel string `short:"l" help:"Log level (overrides config)."`
}

// load reads the config file and applies flag overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Server.LogLevel = g.LogLevel
	}
	return cfg, nil
}

type ServeCmd struct {
	Addr string `short:"a" help:"Address to listen on (overrides config)."`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		return err
	}

	clock := quartz.NewReal()
	svc := app.NewService(
		app.WithClock(clock),
		app.WithLogger(logger.WithPrefix("games")),
		app.WithTTL(cfg.TTL()),
	)
	handler := web.NewServer(svc,
		web.WithLogger(logger.WithPrefix("http")),
		web.WithClock(clock),
		web.WithHeartbeat(cfg.Heartbeat()),
	)
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info("server starting", "addr", cfg.Server.Address, "ttl", cfg.TTL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		return svc.RunJanitor(ctx, cfg.SweepInterval())
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return eg.Wait()
}

type PlayCmd struct {
	NoColor bool `help:"Disable colors."`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.NoColor || os.Getenv("NO_COLOR") != "" {
		tui.DisableColor()
	}
	// The terminal belongs to the game; only errors reach stderr.
	logger, err := logging.New(os.Stderr, "error", cfg.Server.LogFormat)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	return tui.Run(ctx, logger)
}

var cli struct {
	Globals

	Serve ServeCmd `cmd:"" default:"1" help:"Serve the game over HTTP."`
	Play  PlayCmd  `cmd:"" help:"Play in the terminal."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("tictactoe"),
		kong.Description("Two-player Tic-Tac-Toe with move history and time travel."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
