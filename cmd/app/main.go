package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"wellquest/internal/api"
	"wellquest/internal/middleware"
	"wellquest/internal/recommender"
	"wellquest/internal/repository"
	"wellquest/internal/service"
	"wellquest/pkg/auth"
	"wellquest/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	rec := recommender.NewClient(cfg.Recommender)
	jwtAuth := auth.NewJWTAuth(cfg.Auth.JWTSecret)

	userService := service.NewUserService(repo)
	assignmentService := service.NewAssignmentService(repo, rec)
	recordService := service.NewMissionRecordService(repo)
	catalogService := service.NewCatalogService(repo)

	authz := middleware.NewAuthorization(userService)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewUserRoutes(a, userService, jwtAuth)
	api.NewMissionRoutes(a, assignmentService, recordService, jwtAuth)
	api.NewCatalogRoutes(a, catalogService, jwtAuth, authz)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
