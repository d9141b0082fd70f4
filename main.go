package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"invite-service/internal/config"
	"invite-service/internal/db"
	"invite-service/internal/handlers"
	"invite-service/internal/lifecycle"
	"invite-service/internal/middleware"
	"invite-service/internal/notify"
	"invite-service/internal/observability"
	"invite-service/internal/push"
	"invite-service/internal/rabbitmq"
	"invite-service/internal/repositories"
	"invite-service/internal/telemetry"
	"invite-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.OTLPEndpoint, "invite-service", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to setup tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	database, err := db.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open local store: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AuditExchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))
	audit := telemetry.NewAuditEmitter(publisher, "audit.invitations", "invite-service", cfg.Environment)

	invitationRepo := repositories.NewInvitationRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	cacheRepo := repositories.NewResponseCacheRepo(database)

	gateway := push.NewHTTPGateway(cfg.PushRelayURL, cfg.PushRelayKey, cfg.PushTimeout)
	emitter := notify.NewLogEmitter()
	hub := ws.NewHub()

	controller := lifecycle.NewController(
		invitationRepo,
		conversationRepo,
		messageRepo,
		cacheRepo,
		gateway,
		emitter,
		hub,
		audit,
		lifecycle.Config{
			GatewayAttempts:   cfg.GatewayAttempts,
			GatewayRetryDelay: cfg.GatewayRetryDelay,
		},
	)

	invitationHandler := handlers.NewInvitationHandler(controller, invitationRepo, audit)
	conversationHandler := handlers.NewConversationHandler(conversationRepo, messageRepo, hub)
	relay := ws.NewRelayHandler(hub, cfg.DeviceToken)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("invite-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	deviceAuth := middleware.DeviceAuth(cfg.DeviceToken)

	router.POST("/invitations", deviceAuth, invitationHandler.Create)
	router.GET("/invitations", deviceAuth, invitationHandler.List)
	router.POST("/invitations/:invitation_id/accept", deviceAuth, invitationHandler.Accept)
	router.POST("/invitations/:invitation_id/decline", deviceAuth, invitationHandler.Decline)
	router.POST("/invitations/:invitation_id/cancel", deviceAuth, invitationHandler.Cancel)
	router.POST("/push/receipts", deviceAuth, invitationHandler.PushReceipt)

	router.GET("/conversations", deviceAuth, conversationHandler.List)
	router.GET("/conversations/:conversation_id/messages", deviceAuth, conversationHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", deviceAuth, conversationHandler.PostMessage)

	router.GET("/ws", relay.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	log.Printf("invite service starting peer=%s port=%s", cfg.SelfPeerID, cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
