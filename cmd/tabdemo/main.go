package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/shiftwm/tab-client-go/internal/config"
	"github.com/shiftwm/tab-client-go/internal/display"
	"github.com/shiftwm/tab-client-go/internal/preview"
	"github.com/shiftwm/tab-client-go/internal/render"
	"github.com/shiftwm/tab-client-go/internal/session"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Token == "" {
		log.Fatalf("missing session token (use -token or %s)", config.TokenEnv)
	}

	sess, err := session.Connect(cfg.ServerURL, cfg.Token, session.Options{
		SwapchainDepth: cfg.SwapchainDepth,
		JPEGQuality:    cfg.Quality,
	})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer sess.Close()
	log.Printf("connected to %s via %s", sess.ServerName(), sess.ProtocolName())

	registry := display.NewRegistry()

	// Wait for a monitor before declaring readiness. The handshake may have
	// seeded one already; otherwise keep draining until an attach arrives.
	for sess.MonitorCount() == 0 {
		sess.Pump()
		display.Drain(sess, registry)
	}
	registry.Adopt(sess.MonitorID(0))
	if id, ok := registry.Active(); ok {
		log.Printf("targeting monitor %s", id)
	}

	if err := sess.SendReady(); err != nil {
		log.Fatalf("send ready: %v", err)
	}

	sprite, err := render.NewSpriteRenderer(cfg.Texture)
	if err != nil {
		log.Fatalf("load texture: %v", err)
	}
	spinner := display.NewSpinner(cfg.SpinRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Preview {
		runWithPreview(ctx, sess, registry, sprite, spinner)
		return
	}

	loop := display.NewLoop(sess, registry, sprite, spinner)
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("presentation loop: %v", err)
	}
}

// runWithPreview runs the presentation loop in the background and keeps the
// main goroutine for the Ebitengine window, which requires it.
func runWithPreview(ctx context.Context, sess *session.Session, registry *display.Registry, sprite display.Renderer, spinner *display.Spinner) {
	win := preview.NewWindow()
	loop := display.NewLoop(sess, registry, render.Tee(sprite, win), spinner)

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("presentation loop: %v", err)
		}
	}()

	if err := win.Run(); err != nil {
		log.Fatalf("preview window: %v", err)
	}
}
