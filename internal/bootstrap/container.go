package bootstrap

import (
	"context"
	"log"

	"cardionote-be/internal/config"
	"cardionote-be/internal/controller"
	"cardionote-be/internal/handler"
	"cardionote-be/internal/pkg/logger"
	"cardionote-be/internal/pkg/mailer"
	"cardionote-be/internal/repository/memory"
	"cardionote-be/internal/repository/unitofwork"
	"cardionote-be/internal/service"
	"cardionote-be/internal/store"
	"cardionote-be/internal/websocket"
	"cardionote-be/pkg/changefeed"
	"cardionote-be/pkg/ecgsubmit"

	pktNats "cardionote-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	NoteController   controller.INoteController
	ECGController    controller.IECGController
	AssistController controller.IAssistController

	// Background services (exposed for main.go to run)
	RealtimeService service.IRealtimeService

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.App.ClientURL,
	)

	// In-memory refresh sessions
	sessionRepo := memory.NewSessionRepository()

	// 2. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// In-process change feed driving store reloads
	feed := changefeed.New()

	// 3. Synchronized stores
	notePersistence := store.NewNotePersistence(uowFactory, feed, natsPub)
	noteStores := store.NewManager(store.NoteConfig(notePersistence, sysLogger))

	ecgPersistence := store.NewECGResultPersistence(uowFactory, feed, natsPub)
	ecgStores := store.NewManager(store.ECGResultConfig(ecgPersistence, sysLogger))

	// 4. Services
	authService := service.NewAuthService(uowFactory, sessionRepo, emailService, natsPub, cfg.App.JWTSecret, sysLogger)
	noteService := service.NewNoteService(noteStores)
	assistService := service.NewAssistService(cfg.Keys.OpenRouter, cfg.Keys.Gemini, cfg.Keys.Serper, sysLogger)

	submitClient := ecgsubmit.NewClient(cfg.ECG.WebhookURL, sysLogger)
	ecgService := service.NewECGService(submitClient, assistService, ecgStores)

	var realtimeService service.IRealtimeService
	if natsSub != nil {
		realtimeService = service.NewRealtimeService(natsSub, wsHub, wsLogger)
	}

	realtimeHandler := handler.NewRealtimeHandler(wsHub, cfg.App.JWTSecret, wsLogger)

	// 5. Controllers
	return &Container{
		AuthController:   controller.NewAuthController(authService, noteService, ecgService),
		NoteController:   controller.NewNoteController(noteService),
		ECGController:    controller.NewECGController(ecgService),
		AssistController: controller.NewAssistController(assistService),
		RealtimeService:  realtimeService,
		RealtimeHandler:  realtimeHandler,
		WebSocketHub:     wsHub,
	}
}
