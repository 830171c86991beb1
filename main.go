package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/km-arc/go-autowire/framework/app"
	"github.com/km-arc/go-autowire/framework/catalog"
	"github.com/km-arc/go-autowire/framework/config"
	"github.com/km-arc/go-autowire/framework/container"
)

// ── Demo types ────────────────────────────────────────────────────────────────

type Clock interface{ Hour() int }

type wallClock struct{ hour int }

func newWallClock(hour int) *wallClock { return &wallClock{hour: hour} }
func (c *wallClock) Hour() int { return c.hour }

type Greeting struct {
	clock Clock
	name  string
}

func NewGreeting(clock Clock, name string) *Greeting {
	return &Greeting{clock: clock, name: name}
}

func (g *Greeting) Message() string {
	if g.clock.Hour() < 12 {
		return "Good morning, " + g.name
	}
	return "Good afternoon, " + g.name
}

func main() {
	cfg := config.Load()
	log := funcr.New(func(prefix, args string) {
		fmt.Fprintln(os.Stderr, prefix, args)
	}, funcr.Options{Verbosity: cfg.App.LogVerbosity})

	if err := run(cfg, log); err != nil {
		log.Error(err, "exiting")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logr.Logger) error {
	application, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	// ── Types ──────────────────────────────────────────────────────────────────

	types := application.Types
	if err := types.Interface("Clock", reflect.TypeFor[Clock]()); err != nil {
		return err
	}
	if err := types.Concrete("WallClock", newWallClock,
		catalog.Default("hour", time.Now().Hour()),
	); err != nil {
		return err
	}
	if err := types.Concrete("Greeting", NewGreeting,
		catalog.Typed("clock", "Clock"),
		catalog.Default("name", "world"),
	); err != nil {
		return err
	}

	// ── Bindings ───────────────────────────────────────────────────────────────

	if _, err := application.Bind("Clock", "WallClock", container.Shared()); err != nil {
		return err
	}
	greeting, err := application.Add("Greeting")
	if err != nil {
		return err
	}
	greeting.AddArgument("$name", cfg.App.Name)

	if err := application.Boot(); err != nil {
		return err
	}

	g, err := container.Resolve[*Greeting](application.Container, "Greeting")
	if err != nil {
		return err
	}
	fmt.Println(g.Message())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}
