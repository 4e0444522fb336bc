package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bengche/payvault-push/internal/client"
	"github.com/bengche/payvault-push/internal/config"
	"github.com/bengche/payvault-push/internal/worker"
	mw "github.com/bengche/payvault-push/pkg/middleware"
)

// wsURL derives the delivery channel address from the API base URL.
func wsURL(baseURL string) string {
	url := strings.Replace(baseURL, "https://", "wss://", 1)
	url = strings.Replace(url, "http://", "ws://", 1)
	return url + "/notifications/ws"
}

func main() {
	cfg := config.Load()

	if cfg.SessionToken == "" {
		log.Fatal("SESSION_TOKEN is required (see DEV_USER_ID on the API server)")
	}

	api := client.NewAPI(cfg.APIBaseURL)
	if err := api.SetSession(cfg.SessionToken); err != nil {
		log.Fatalf("Failed to set session: %v", err)
	}
	if err := api.OnSessionExpired(func() {
		log.Println("Session expired. Sign in again and restart the agent.")
	}); err != nil {
		log.Fatalf("Failed to register session handler: %v", err)
	}

	agent := worker.NewAgent(worker.NewLogNotifier(), worker.NewLogClients())

	header := http.Header{}
	header.Set("Cookie", mw.SessionCookie+"="+cfg.SessionToken)
	platform := worker.NewPlatform(agent, wsURL(cfg.APIBaseURL), header)

	manager := client.NewManager(api, platform, cfg.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Push setup and polling run independently; neither blocks the other.
	go manager.SetupPush(ctx)

	log.Printf("Agent polling %s every %s", cfg.APIBaseURL, cfg.PollInterval)
	manager.Run(ctx)

	log.Println("Agent exited gracefully.")
}
