package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/samandareo/quick-brand-admin/internal/api/handler"
	"github.com/samandareo/quick-brand-admin/internal/auth"
	"github.com/samandareo/quick-brand-admin/internal/chatsync"
	"github.com/samandareo/quick-brand-admin/internal/restapi"
	"github.com/samandareo/quick-brand-admin/internal/socket"
)

func main() {
	log.Println("Starting Quick Brand admin chat daemon...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	apiURL := os.Getenv("CHAT_API_URL")
	socketURL := os.Getenv("CHAT_SOCKET_URL")
	token := os.Getenv("ADMIN_TOKEN")
	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8090"
	}
	if apiURL == "" || socketURL == "" || token == "" {
		log.Fatal("CHAT_API_URL, CHAT_SOCKET_URL and ADMIN_TOKEN must be set")
	}

	adminID, err := auth.ParseIdentity(token)
	if err != nil {
		log.Fatalf("Invalid admin token: %v", err)
	}
	log.Printf("Authenticated as admin %s", adminID)

	// 1. Collaborators
	rest := restapi.NewClient(apiURL, token)
	conn := socket.NewClient(socketURL, adminID, token)

	// 2. Sync engine wired between the two
	engine := chatsync.NewEngine(adminID, conn, rest)
	conn.SetEventHandler(engine.HandleEvent)
	conn.SetStateHandler(func(state socket.State, err error) {
		if state == socket.StateDisconnected || state == socket.StateError {
			engine.HandleDisconnect()
		}
		if err != nil {
			log.Printf("WARNING: socket state %s: %v", state, err)
		}
	})

	if err := conn.Connect(); err != nil {
		// Transient failures keep retrying in the background; only a
		// rejected credential is fatal here.
		log.Printf("ERROR: initial connect failed: %v", err)
		if errors.Is(err, socket.ErrAuthFailed) {
			log.Fatal("Admin credential rejected by chat service")
		}
	}
	defer conn.Disconnect()

	// 3. Local UI surface
	r := gin.Default()
	h := handler.NewHandler(engine, conn)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           listenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Listening on %s", listenAddr)
	log.Fatal(server.ListenAndServe())
}
