package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkempf/websocket-groupchat/internal/server"
)

func main() {
	fmt.Println("Starting GroupChat server...")

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	registry := server.NewRegistry()
	jokes := server.NewDadJokeService(cfg.JokeURL, cfg.JokeTimeout)
	srv := server.NewServer(cfg, registry, jokes)

	mux := server.SetupRoutes(srv)
	httpServer := server.CreateServer(cfg.Port, mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}
		if err := srv.Shutdown(cfg.ShutdownTimeout); err != nil {
			log.Printf("Connection shutdown error: %v", err)
		}
	}
}
