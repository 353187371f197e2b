package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"calcledger/internal/auth"
	"calcledger/internal/cache"
	"calcledger/internal/config"
	"calcledger/internal/db"
	"calcledger/internal/handler"
	"calcledger/internal/model"
	"calcledger/internal/repository"
	"calcledger/internal/router"
	"calcledger/internal/service"
)

// @title Calculation Ledger API
// @version 1.0
// @description User accounts and a per-user calculation ledger behind JWT authentication.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Calculation{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	calcRepo := repository.NewCalculationRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo, jwtService, tokenStore)
	calcService := service.NewCalculationService(calcRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	calculationHandler := handler.NewCalculationHandler(calcService)

	// Register routes
	router.Register(e, cfg, userHandler, calculationHandler, userRepo)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
