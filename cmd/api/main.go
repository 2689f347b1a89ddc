package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/painel"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/infra/worker"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ("user", "password", "localhost", "5672")
	if err != nil {
		panic(err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	agentRepo := database.NewAgentRepository(db)
	rotationRepo := database.NewRotationStateRepository(db)

	// 2. Gateways e Adapters
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	pushClient := painel.NewClient()
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), 587, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
	)

	// 3. Notificador (consome a fila e faz o fan-out push + e-mail)
	notifier := queue.NewWorker(rabbitMQ.Ch, pushClient, mailSender)
	go notifier.Start(queue.QueueName)

	// 4. UseCases
	panelBaseURL := os.Getenv("PAINEL_APP_URL")
	if panelBaseURL == "" {
		panelBaseURL = "https://painel.liguemedicina.com"
	}

	roster := usecase.NewRosterResolver(agentRepo)
	picker := usecase.NewPickNextUseCase(roster, rotationRepo, agentRepo)
	assigner := usecase.NewAssignLeadUseCase(leadRepo, rotationRepo, producer, panelBaseURL)

	// 5. Jobs agendados
	ctx := context.Background()

	bulkWorker := worker.NewBulkAssignmentWorker(leadRepo, roster, rotationRepo, agentRepo, assigner)
	go bulkWorker.Start(ctx)

	sweepWorker := worker.NewReassignmentWorker(leadRepo, picker, assigner)
	go sweepWorker.Start(ctx)

	// 6. Handlers
	leadHandler := handlers.NewLeadHandler(leadRepo, agentRepo, picker, assigner)
	assignmentHandler := handlers.NewAssignmentHandler(leadRepo, agentRepo, rotationRepo, picker, assigner, bulkWorker)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Post("/leads", leadHandler.CaptureLead)
	r.Post("/leads/{id}/assign", assignmentHandler.HandleAssign)
	r.Get("/rotation/{categoryID}", assignmentHandler.HandleGetRotation)
	r.Post("/jobs/bulk-assignment/run", assignmentHandler.HandleRunBulk)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	log.Printf("🔥 Server ligue-leads rodando na porta %s", port)
	http.ListenAndServe(port, r)
}
