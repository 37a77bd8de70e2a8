package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nebula/api"
	"nebula/config"
	"nebula/database"
	"nebula/handlers"
	"nebula/realtime"
	"nebula/session"
	"nebula/tui"
)

func main() {
	serve := flag.Bool("serve", false, "run the development chat server instead of the client")
	envFile := flag.String("env", "", "path to an env file (default .env)")
	flag.Parse()

	cfg := config.Load(*envFile)

	if *serve {
		runServer(cfg)
		return
	}
	if err := runClient(cfg); err != nil {
		log.Fatalf("Client failed: %v", err)
	}
}

func runServer(cfg config.Config) {
	srv := handlers.NewServer(cfg.JWTSecret)
	defer srv.Close()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 Nebula dev server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("🔌 Push channel at ws://localhost:%s/ws\n", cfg.Port)
	log.Println("✅ Using in-memory storage; data is lost on restart")

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func runClient(cfg config.Config) error {
	// The terminal belongs to the UI, so logs go to a file.
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	store, err := database.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	client := api.New(cfg.APIBase,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRateLimit(cfg.APIRPS, cfg.APIBurst),
	)
	channel := realtime.New(cfg.WSURL)

	notifier := &tui.Notifier{}
	ctrl := session.New(store, client, channel, notifier)
	defer ctrl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program := tea.NewProgram(tui.New(ctx, ctrl), tea.WithAltScreen(), tea.WithMouseCellMotion())
	notifier.Attach(program)

	log.Printf("Nebula client using %s", cfg.APIBase)
	_, err = program.Run()
	return err
}
