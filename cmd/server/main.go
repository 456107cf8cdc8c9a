package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"knowhub/internal/config"
	"knowhub/internal/filestore"
	"knowhub/internal/handler"
	"knowhub/internal/markdown"
	"knowhub/internal/middleware"
	"knowhub/internal/repository/postgres"
	"knowhub/internal/seo"
	"knowhub/internal/service/chat"
	chatAnthropic "knowhub/internal/service/chat/anthropic"
	"knowhub/internal/service/comment"
	"knowhub/internal/service/document"
	"knowhub/internal/service/image"
	"knowhub/internal/service/membership"
	"knowhub/internal/service/search"
	"knowhub/internal/treestore"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging: stdout always, plus a rotating file in prod
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.Environment == "prod" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create tables if they don't exist
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	accountRepo := postgres.NewAccountRepository(repoConfig)
	adminSessionRepo := postgres.NewAdminSessionRepository(repoConfig)
	codeRepo := postgres.NewActivationCodeRepository(repoConfig)
	usageRepo := postgres.NewUsageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// File-backed stores
	treeStore := treestore.NewStore(filepath.Join(cfg.DataDir, "tree.json"), logger)
	viewStore := filestore.NewViewStore(filepath.Join(cfg.DataDir, "views.json"), logger)
	commentStore := filestore.NewCommentStore(filepath.Join(cfg.DataDir, "comments.json"), logger)

	// Services
	renderer := markdown.NewRenderer()
	docService := document.NewService(treeStore, viewStore, renderer, cfg.DocsDir, logger)
	searchService := search.NewService(treeStore, cfg.DocsDir, logger)
	commentService := comment.NewService(commentStore, logger)
	imageService := image.NewService(cfg.ImagesDir, logger)
	memberService := membership.NewService(
		accountRepo, adminSessionRepo, codeRepo, usageRepo, txManager,
		config.DefaultLevels(), cfg.AdminUsername, cfg.AdminPassword, logger,
	)

	provider, err := chatAnthropic.NewProvider(cfg.AnthropicAPIKey, cfg.ChatModel)
	if err != nil {
		log.Fatalf("Failed to set up chat provider: %v", err)
	}
	chatService := chat.NewService(provider, memberService, docService, logger)

	seoGenerator := seo.NewGenerator(treeStore, cfg.DocsDir, cfg.Site)

	logger.Info("services initialized")

	// Handlers
	secureCookies := cfg.Environment == "prod"
	treeHandler := handler.NewTreeHandler(docService, logger)
	docHandler := handler.NewDocumentHandler(docService, searchService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	authHandler := handler.NewAuthHandler(memberService, secureCookies, logger)
	adminHandler := handler.NewAdminHandler(memberService, commentService, docService, chatService, secureCookies, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	imageHandler := handler.NewImageHandler(imageService, logger)
	seoHandler := handler.NewSEOHandler(seoGenerator, logger)

	// HTTP router (Go 1.22+ method patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Public reading surface
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("GET /api/documents/search", docHandler.SearchDocuments) // must precede {id}
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("GET /api/documents/{docID}/comments", commentHandler.ListComments)
	mux.HandleFunc("POST /api/documents/{docID}/comments", commentHandler.AddComment)

	// Member accounts
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("POST /api/auth/redeem", authHandler.RedeemCode)
	mux.HandleFunc("GET /api/quota", authHandler.Quota)
	mux.HandleFunc("GET /api/levels", authHandler.Levels)

	// AI chat (metered)
	mux.HandleFunc("POST /api/chat", chatHandler.Stream)

	// Admin: sessions
	mux.HandleFunc("POST /api/admin/login", adminHandler.Login)
	mux.HandleFunc("POST /api/admin/logout", adminHandler.Logout)
	mux.HandleFunc("GET /api/admin/session", adminHandler.Session)

	// Admin: tree management
	mux.HandleFunc("POST /api/admin/nodes", middleware.RequireAdmin(treeHandler.CreateNode))
	mux.HandleFunc("PUT /api/admin/nodes/{id}", middleware.RequireAdmin(treeHandler.RenameNode))
	mux.HandleFunc("DELETE /api/admin/nodes/{id}", middleware.RequireAdmin(treeHandler.DeleteNode))
	mux.HandleFunc("POST /api/admin/nodes/{id}/move", middleware.RequireAdmin(treeHandler.MoveNode))
	mux.HandleFunc("POST /api/admin/nodes/{id}/upload", middleware.RequireAdmin(treeHandler.UploadBody))
	mux.HandleFunc("POST /api/admin/outline", middleware.RequireAdmin(adminHandler.GenerateOutline))
	mux.HandleFunc("POST /api/admin/outline/confirm", middleware.RequireAdmin(adminHandler.ConfirmOutline))

	// Admin: membership management
	mux.HandleFunc("POST /api/admin/codes", middleware.RequireAdmin(adminHandler.GenerateCodes))
	mux.HandleFunc("GET /api/admin/codes", middleware.RequireAdmin(adminHandler.ListCodes))
	mux.HandleFunc("DELETE /api/admin/codes/{code}", middleware.RequireAdmin(adminHandler.DeleteCode))
	mux.HandleFunc("GET /api/admin/accounts", middleware.RequireAdmin(adminHandler.ListAccounts))
	mux.HandleFunc("PUT /api/admin/accounts/{username}/level", middleware.RequireAdmin(adminHandler.SetAccountLevel))

	// Admin: moderation and images
	mux.HandleFunc("DELETE /api/admin/documents/{docID}/comments/{commentID}", middleware.RequireAdmin(adminHandler.DeleteComment))
	mux.HandleFunc("POST /api/admin/images", middleware.RequireAdmin(imageHandler.Upload))
	mux.HandleFunc("GET /api/admin/images", middleware.RequireAdmin(imageHandler.List))

	// Uploaded images are public once stored
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.ImagesDir))))

	// SEO surfaces
	mux.HandleFunc("GET /sitemap.xml", seoHandler.Sitemap)
	mux.HandleFunc("GET /rss.xml", seoHandler.RSS)
	mux.HandleFunc("GET /robots.txt", seoHandler.Robots)

	// Middleware chain, applied in reverse: CORS → Recovery → Sessions → Routes
	var root http.Handler = mux
	root = middleware.WithAccount(memberService)(root)
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
