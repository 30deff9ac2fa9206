package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcfg "github.com/park285/cheese-chess-client/internal/config"
	"github.com/park285/cheese-chess-client/internal/obslog"
	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/internal/wsconn"
)

// wscheck dials the game endpoint, optionally sends one intent, and prints
// every decoded frame for a short window.
func main() {
	var (
		window = flag.Duration("window", 10*time.Second, "how long to observe")
		create = flag.Bool("create", false, "send create after connecting")
		join   = flag.String("join", "", "send join for this room after connecting")
	)
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.Token == "" {
		log.Fatal("CHESS_TOKEN is required")
	}

	target, err := wsconn.ResolveTarget(cfg.WSBaseURL, obslog.TokenPreview(cfg.Token))
	if err != nil {
		log.Fatalf("target error: %v", err)
	}
	log.Printf("target: %s", target)

	conn := cfg.Conn()
	conn.ReconnectAttempts = 0
	conn.Logger = obslog.L()
	ws := wsconn.New(conn, cfg.Token)
	ws.OnStateChange(func(state wsconn.State) {
		log.Printf("WS state: %s", state)
	})
	ws.OnEvent(func(ev protocol.Inbound) {
		fmt.Printf("WS event type=%s %+v\n", ev.Type, ev)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}

	switch {
	case *join != "":
		ws.Send(protocol.Join(*join))
	case *create:
		ws.Send(protocol.Create())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	t := time.NewTimer(*window)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ws.Close(closeCtx)
}
