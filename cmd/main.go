package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tutordesk/tutordesk-backend/internal/app"
	"github.com/tutordesk/tutordesk-backend/internal/attachments"
	"github.com/tutordesk/tutordesk-backend/internal/clients/ai"
	"github.com/tutordesk/tutordesk-backend/internal/handlers"
	"github.com/tutordesk/tutordesk-backend/internal/localstore"
	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
	"github.com/tutordesk/tutordesk-backend/internal/remote"
	"github.com/tutordesk/tutordesk-backend/internal/repos"
	"github.com/tutordesk/tutordesk-backend/internal/server"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg := app.LoadConfig(log)
	if cfg.LogMode != logMode {
		if reLog, err := logger.New(cfg.LogMode); err == nil {
			log = reLog
			defer log.Sync()
		}
	}

	// Local cache. Every remote failure lands here, so a broken cache file
	// degrades to an in-memory store rather than killing the process.
	log.Info("Setting up local cache from main...")
	var kv localstore.KV
	if sqliteKV, err := localstore.NewSQLiteKV(cfg.LocalCachePath, log); err != nil {
		log.Warn("SQLite cache init failed, falling back to in-memory store", "path", cfg.LocalCachePath, "error", err)
		kv = localstore.NewMemoryKV()
	} else {
		kv = sqliteKV
	}
	local := localstore.NewStore(kv, log)

	// Remote backend (optional)
	var rows remote.Rows
	if cfg.RemoteDSN != "" {
		client, err := remote.NewClient(cfg.RemoteDSN, log)
		if err != nil {
			log.Warn("Remote database init failed, running local-only", "error", err)
		} else {
			rows = client
		}
	} else {
		log.Info("No remote DSN configured, running local-only")
	}

	var session remote.SessionProbe
	if cfg.RemoteAccessToken != "" {
		session = remote.NewTokenAuth(cfg.RemoteAccessToken, cfg.RemoteJWTSecret, log)
	}

	var fns remote.Functions
	if cfg.FunctionsBaseURL != "" {
		fns = remote.NewHTTPFunctions(cfg.FunctionsBaseURL, cfg.RemoteAccessToken, log)
	}
	aiClient := ai.NewClient(fns, cfg.GenerateFunction, log)

	var objects remote.ObjectStore
	if cfg.StorageBucket != "" {
		gcs, err := remote.NewGCSObjectStore(context.Background(), cfg.StorageBucket, cfg.StorageCredentialsFile, log)
		if err != nil {
			log.Warn("Object storage init failed, attachments stay inline", "error", err)
		} else {
			objects = gcs
		}
	}

	// Repos
	log.Info("Setting up repos from main...")
	deps := repos.Deps{Remote: rows, Session: session, Local: local, Log: log}
	userRepo := repos.NewUserRepo(deps, cfg.SessionProbeTimeout)
	projectRepo := repos.NewProjectRepo(deps)
	threadRepo := repos.NewThreadRepo(deps)
	messageRepo := repos.NewMessageRepo(deps)
	homeworkRepo := repos.NewHomeworkRepo(deps)
	testSetRepo := repos.NewTestSetRepo(deps)
	lessonRecordRepo := repos.NewLessonRecordRepo(deps)

	// Attachments
	fallbackOwner := func(ctx context.Context) string {
		return userRepo.CurrentUser(ctx).ID
	}
	attachmentSvc := attachments.NewService(objects, session, fallbackOwner, cfg.SignedURLTTL, log)

	// Bootstrap the operating user and their default subject projects.
	bootCtx := context.Background()
	user := userRepo.CurrentUser(bootCtx)
	if err := projectRepo.InitializeDefaultProjects(bootCtx, user.ID); err != nil {
		log.Warn("Default project bootstrap failed", "error", err)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(userRepo)
	projectHandler := handlers.NewProjectHandler(projectRepo, userRepo)
	threadHandler := handlers.NewThreadHandler(threadRepo, userRepo)
	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo)
	chatHandler := handlers.NewChatHandler(messageRepo, threadRepo, projectRepo, userRepo, aiClient)
	homeworkHandler := handlers.NewHomeworkHandler(homeworkRepo, userRepo)
	testSetHandler := handlers.NewTestSetHandler(testSetRepo, userRepo)
	lessonRecordHandler := handlers.NewLessonRecordHandler(lessonRecordRepo, userRepo)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentSvc)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowOrigins:        cfg.CORSOrigins,
		UserHandler:         userHandler,
		ProjectHandler:      projectHandler,
		ThreadHandler:       threadHandler,
		MessageHandler:      messageHandler,
		ChatHandler:         chatHandler,
		HomeworkHandler:     homeworkHandler,
		TestSetHandler:      testSetHandler,
		LessonRecordHandler: lessonRecordHandler,
		AttachmentHandler:   attachmentHandler,
	})

	fmt.Printf("Server listening on %s\n", cfg.ServerAddr)
	if err := router.Run(cfg.ServerAddr); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
