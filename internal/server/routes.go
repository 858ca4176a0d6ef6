package server

import (
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"frontdesk/internal/answers"
	"frontdesk/internal/db"
	"frontdesk/internal/handlers/api"
	"frontdesk/internal/notify"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB) {
	// The sink registry starts empty; the conversation endpoint installs its
	// sink via the agent session route. AGENT_REPLY_URL preinstalls one for
	// deployments with a fixed agent address.
	registry := notify.NewRegistry()
	if s.Cfg.AgentReplyURL != "" {
		registry.Register(notify.NewHTTPSink(s.Cfg.AgentReplyURL))
		log.Printf("Default conversation sink registered: %s", s.Cfg.AgentReplyURL)
	}

	notifier := notify.NewNotifier(database, database, registry)
	cache := answers.NewCache(database, s.Cfg.FuzzyThreshold)

	// Initialize handlers
	requestHandler := api.NewRequestHandler(database, s.Cfg, cache, notifier)
	learnedHandler := api.NewLearnedAnswerHandler(database, cache)
	webhookHandler := api.NewWebhookHandler(notifier)
	agentHandler := api.NewAgentHandler(registry)
	healthHandler := api.NewHealthHandler(database)

	// Conversation endpoint routes
	s.App.Post("/api/requests", requestHandler.Create)
	s.App.Get("/api/lookup", learnedHandler.Lookup)
	s.App.Post("/api/agent/session", agentHandler.RegisterSession)

	// Dashboard routes
	s.App.Get("/api/requests/:status", requestHandler.ListByStatus)
	s.App.Post("/api/requests/:id/answer", requestHandler.Answer)
	s.App.Get("/api/history", requestHandler.History)
	s.App.Get("/api/stats", requestHandler.Stats)
	s.App.Get("/api/learned-answers", learnedHandler.List)

	// Out-of-band supervisor answer webhook
	s.App.Post("/supervisor_answer", webhookHandler.SupervisorAnswer)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
