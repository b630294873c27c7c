package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"

	"places-go/internal/config"
	"places-go/internal/handlers/apiserver"
	"places-go/internal/logger"
	"places-go/internal/middleware"
	"places-go/internal/services"
	"places-go/internal/session"
	"places-go/internal/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.L()
	log.Infow("configuration loaded", "app", cfg.AppName)

	// 3. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalw("init database", "error", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Warnw("auto migrate", "error", err)
	}
	log.Infow("database ready", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	// 4. 初始化 Redis 与会话存储
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalw("connect redis", "addr", cfg.Redis.Addr, "error", err)
	}
	sessionStore := session.NewRedisStore(redisClient, cfg.Session.TTL)
	log.Infow("redis connected", "addr", cfg.Redis.Addr)

	// 5. 初始化 Repositories
	userRepo := storage.NewGormUserRepository(db)
	friendReqRepo := storage.NewGormFriendRequestRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	notificationRepo := storage.NewGormNotificationRepository(db)
	categoryRepo := storage.NewGormCategoryRepository(db)
	placeRepo := storage.NewGormPlaceRepository(db)
	favoriteRepo := storage.NewGormFavoriteRepository(db)
	alertRepo := storage.NewGormAlertRepository(db)

	// 6. 初始化本地文件存储（头像与群组图片）
	const assetsBaseURL = "/assets"
	fileStorage, err := storage.NewLocalFileStorage(cfg.Storage, assetsBaseURL)
	if err != nil {
		log.Fatalw("init file storage", "path", cfg.Storage.LocalPath, "error", err)
	}

	// 7. 初始化 Services
	authService := services.NewAuthService(userRepo, sessionStore)
	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(db, userRepo, friendReqRepo, friendshipRepo)
	groupService := services.NewGroupService(db, groupRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, groupRepo)
	notificationService := services.NewNotificationService(db, notificationRepo, userRepo, categoryRepo, placeRepo)
	catalogService := services.NewCatalogService(categoryRepo, placeRepo)
	favoriteService := services.NewFavoriteService(favoriteRepo)
	routeService := services.NewRouteService(cfg.Routing)
	alertService := services.NewAlertService(alertRepo)

	// 8. 初始化 Handlers
	authHandler := apiserver.NewAuthHandler(authService, cfg.Session)
	userHandler := apiserver.NewUserHandler(userService, fileStorage, cfg.Storage)
	friendHandler := apiserver.NewFriendHandler(friendService)
	groupHandler := apiserver.NewGroupHandler(groupService, fileStorage, cfg.Storage)
	messageHandler := apiserver.NewMessageHandler(messageService)
	notificationHandler := apiserver.NewNotificationHandler(notificationService)
	catalogHandler := apiserver.NewCatalogHandler(catalogService)
	favoriteHandler := apiserver.NewFavoriteHandler(favoriteService)
	routeHandler := apiserver.NewRouteHandler(routeService)
	alertHandler := apiserver.NewAlertHandler(alertService)

	// 9. 设置 HTTP 路由
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// 9.1 认证
	api.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// 9.2 目录（公开只读）
	api.HandleFunc("/categories", catalogHandler.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id:[0-9]+}", catalogHandler.GetCategory).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id:[0-9]+}/icon", catalogHandler.GetCategoryIcon).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id:[0-9]+}/image", catalogHandler.GetCategoryImage).Methods(http.MethodGet)
	api.HandleFunc("/categories/{categoryId:[0-9]+}/places", catalogHandler.GetPlacesByCategory).Methods(http.MethodGet)
	api.HandleFunc("/places", catalogHandler.GetPlaces).Methods(http.MethodGet)

	// 9.3 用户资料与搜索
	api.HandleFunc("/users/search/{userId:[0-9]+}", userHandler.SearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", userHandler.GetUserProfile).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", userHandler.UpdateUserProfile).Methods(http.MethodPut)

	// 9.4 好友关系
	api.HandleFunc("/search/{userId:[0-9]+}", friendHandler.SearchUsers).Methods(http.MethodGet)
	api.HandleFunc("/request/{senderId:[0-9]+}", friendHandler.SendFriendRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{userId:[0-9]+}", friendHandler.GetFriendRequests).Methods(http.MethodGet)
	api.HandleFunc("/accept/{requestId:[0-9]+}", friendHandler.AcceptFriendRequest).Methods(http.MethodPut)
	api.HandleFunc("/reject/{requestId:[0-9]+}", friendHandler.RejectFriendRequest).Methods(http.MethodPut)
	api.HandleFunc("/friends/{userId:[0-9]+}", friendHandler.GetFriendsList).Methods(http.MethodGet)
	api.HandleFunc("/friends/{userId:[0-9]+}/{friendId:[0-9]+}", friendHandler.RemoveFriend).Methods(http.MethodDelete)
	api.HandleFunc("/sent-requests/{userId:[0-9]+}", friendHandler.GetSentRequests).Methods(http.MethodGet)
	api.HandleFunc("/cancel-request/{requestId:[0-9]+}", friendHandler.CancelFriendRequest).Methods(http.MethodDelete)

	// 9.5 群组与群聊
	api.HandleFunc("/create-group/{creatorId:[0-9]+}", groupHandler.CreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/user-groups/{userId:[0-9]+}", groupHandler.GetUserGroups).Methods(http.MethodGet)
	api.HandleFunc("/member-groups/{userId:[0-9]+}", groupHandler.GetMemberGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId:[0-9]+}", groupHandler.UpdateGroup).Methods(http.MethodPut)
	api.HandleFunc("/groups/{groupId:[0-9]+}", groupHandler.DeleteGroup).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{groupId:[0-9]+}/add-member/{userId:[0-9]+}", groupHandler.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupId:[0-9]+}/members", groupHandler.GetGroupMembers).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId:[0-9]+}/creator", groupHandler.GetGroupCreator).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId:[0-9]+}/leave", groupHandler.LeaveGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupId:[0-9]+}/messages", messageHandler.GetGroupMessages).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId:[0-9]+}/messages", messageHandler.SendGroupMessage).Methods(http.MethodPost)
	api.HandleFunc("/user-chats/{userId:[0-9]+}", messageHandler.GetUserChats).Methods(http.MethodGet)

	// 9.6 收藏
	api.HandleFunc("/favorites", favoriteHandler.AddFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{userId:[0-9]+}/{placeId:[0-9]+}", favoriteHandler.RemoveFavorite).Methods(http.MethodDelete)
	api.HandleFunc("/favorites/user/{userId:[0-9]+}", favoriteHandler.GetUserFavorites).Methods(http.MethodGet)

	// 9.7 路线与告警
	api.HandleFunc("/routes", routeHandler.GetRoute).Methods(http.MethodGet)
	api.HandleFunc("/alerts/check", alertHandler.CheckAlert).Methods(http.MethodGet)

	// 9.8 需要会话的路由
	sessionMW := middleware.CheckSession(sessionStore)
	protected := api.NewRoute().Subrouter()
	protected.Use(sessionMW)
	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserIDFromContext(r.Context())
		apiserver.WriteProtectedOK(w, userID)
	}).Methods(http.MethodGet)
	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/send", notificationHandler.SendNotification).Methods(http.MethodPost)
	protected.HandleFunc("/notifications/mark-all-read", notificationHandler.MarkAllAsRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkAsRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{id:[0-9]+}", notificationHandler.DeleteNotification).Methods(http.MethodDelete)

	// 9.9 静态文件：上传的头像与群组图片
	r.PathPrefix(assetsBaseURL + "/").Handler(
		http.StripPrefix(assetsBaseURL+"/", http.FileServer(http.Dir(cfg.Storage.LocalPath))))

	// 10. CORS
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.Server.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.Server.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.Server.CORS.AllowedHeaders),
		handlers.MaxAge(cfg.Server.CORS.MaxAge),
	}
	if cfg.Server.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	// 11. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        corsHandler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Infow("api server listening", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Errorw("close redis", "error", err)
	}
	log.Infow("server stopped")
}
