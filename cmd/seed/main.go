package main

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"calcledger/internal/auth"
	"calcledger/internal/cache"
	"calcledger/internal/config"
	"calcledger/internal/db"
	"calcledger/internal/model"
	"calcledger/internal/repository"
	"calcledger/internal/service"
)

type seedUser struct {
	firstName string
	lastName  string
	email     string
	username  string
	password  string
}

type seedCalculation struct {
	typ    string
	inputs []float64
}

var demoUsers = []seedUser{
	{"Ada", "Lovelace", "ada@example.com", "ada", "Analytical1!"},
	{"Charles", "Babbage", "charles@example.com", "charles", "Difference2$"},
}

var demoCalculations = []seedCalculation{
	{"add", []float64{10, 5}},
	{"subtract", []float64{10, 5}},
	{"multiply", []float64{10, 5}},
	{"divide", []float64{10, 5}},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Calculation{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	userRepo := repository.NewUserRepository(gormDB)
	calcRepo := repository.NewCalculationRepository(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	userService := service.NewUserService(userRepo, jwtService, tokenStore)
	calcService := service.NewCalculationService(calcRepo)

	ctx := context.Background()
	created, skipped := 0, 0

	for _, su := range demoUsers {
		existing, err := userRepo.FindByUsernameOrEmail(ctx, su.username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Error checking user %s: %v", su.username, err)
		}
		if existing != nil {
			log.Printf("User %s already exists, skipping", su.username)
			skipped++
			continue
		}

		user, err := userService.Register(ctx, service.RegisterInput{
			FirstName:       su.firstName,
			LastName:        su.lastName,
			Email:           su.email,
			Username:        su.username,
			Password:        su.password,
			ConfirmPassword: su.password,
		})
		if err != nil {
			log.Fatalf("Error creating user %s: %v", su.username, err)
		}
		created++

		for _, sc := range demoCalculations {
			if _, err := calcService.Create(ctx, user.ID, sc.typ, sc.inputs); err != nil {
				log.Fatalf("Error creating calculation for %s: %v", su.username, err)
			}
		}
		log.Printf("Created user %s with %d calculations", su.username, len(demoCalculations))
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}
