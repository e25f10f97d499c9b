package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zevarhq/zevar/internal/db"
	"github.com/zevarhq/zevar/internal/handlers"
	"github.com/zevarhq/zevar/internal/logger"
	"github.com/zevarhq/zevar/internal/repositories"
	"github.com/zevarhq/zevar/internal/services"
	"github.com/zevarhq/zevar/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	zapLogger, err := logger.New()
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer zapLogger.Sync()

	config := db.NewConfig()
	database, err := db.Connect(config)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}
	zapLogger.Info("Database connection established")

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		zapLogger.Fatal("AUTH_SECRET is required")
	}

	// Repositories
	actionRepo := repositories.NewActionRepository(database)
	chatRepo := repositories.NewChatRepository(database)
	customerRepo := repositories.NewCustomerRepository(database)
	invoiceRepo := repositories.NewInvoiceRepository(database)
	stockRepo := repositories.NewStockRepository(database)
	firmRepo := repositories.NewFirmRepository(database)

	// Interpreter: the real language API when a key is configured, the
	// rule-based one otherwise.
	var interpreter services.Interpreter
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		interpreter = services.NewHTTPInterpreter(os.Getenv("LLM_BASE_URL"), apiKey, os.Getenv("LLM_MODEL"))
		zapLogger.Info("Using HTTP interpreter")
	} else {
		interpreter = services.NewMockInterpreter()
		zapLogger.Info("LLM_API_KEY not set, using rule-based interpreter")
	}

	// Transcriber: streaming websocket ASR when an endpoint is configured,
	// otherwise the one-shot HTTP variant.
	primaryLanguages := os.Getenv("PRIMARY_LANGUAGES")
	var transcriber services.Transcriber
	if wsURL := os.Getenv("ASR_WS_URL"); wsURL != "" {
		transcriber = services.NewWSTranscriber(wsURL, os.Getenv("ASR_API_KEY"), primaryLanguages, zapLogger)
	} else {
		transcriber = services.NewHTTPTranscriber(os.Getenv("ASR_BASE_URL"), os.Getenv("ASR_API_KEY"), os.Getenv("ASR_MODEL"), primaryLanguages)
	}

	objectStore := storage.NewFromEnv(zapLogger)
	if objectStore == nil {
		zapLogger.Info("Object storage not configured, recordings will not be archived")
	}

	// Services
	executor := services.NewActionService(invoiceRepo, customerRepo, stockRepo, firmRepo, zapLogger)
	extractor := services.NewExtractor(interpreter, zapLogger)
	chatService := services.NewChatService(actionRepo, chatRepo, extractor, executor, zapLogger)

	// Handlers
	chatHandler := handlers.NewChatHandler(chatService)
	actionHandler := handlers.NewActionHandler(chatService)
	voiceHandler := handlers.NewVoiceHandler(transcriber, objectStore, zapLogger)

	router := handlers.NewRouter(chatHandler, actionHandler, voiceHandler, database, authSecret, zapLogger)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	zapLogger.Info("Server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		zapLogger.Fatal("Server failed", zap.Error(err))
	}
}
