package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"saman-voice/config"
	"saman-voice/whatsapp"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Bot consumes decoded webhook deliveries.
type Bot interface {
	ProcessWebhook(ctx context.Context, payload whatsapp.WebhookPayload)
}

type Server struct {
	httpServer *http.Server
	bot        Bot
	config     *config.Config
}

func NewServer(cfg *config.Config, bot Bot) *Server {
	s := &Server{
		bot:    bot,
		config: cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start begins listening for webhook deliveries
func (s *Server) Start() error {
	log.Printf("🚀 Webhook server starting on port %d", s.config.Port)
	log.Printf("📡 Webhook endpoint: http://localhost:%d/webhook", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleVerification(w, r)
	case http.MethodPost:
		s.handleDelivery(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleVerification answers the Meta subscription handshake: echo the
// challenge when the verify token matches, 403 otherwise.
func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == s.config.WebhookVerifyToken {
		log.Println("✅ Webhook verified")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	log.Printf("❌ Webhook verification failed (mode=%q)", mode)
	http.Error(w, "verification failed", http.StatusForbidden)
}

// handleDelivery acknowledges immediately and processes in the
// background; Meta retries deliveries that do not get a fast 200.
func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Printf("❌ Read webhook body: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var payload whatsapp.WebhookPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		log.Printf("❌ Decode webhook payload: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"received"}`)

	go s.bot.ProcessWebhook(context.Background(), payload)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}
