// Manually sweep expired test sessions.
//
// The sweep also runs inside the server as a background task (once per
// minute). This script is for one-off runs, for example after restoring a
// database backup with stale in_progress sessions.
//
// Usage: go run scripts/sweep_sessions.go

package main

import (
	"log"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/pkg/database"
	"exam_proctor_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sessionRepo := repository.NewSessionRepository(db, nil)
	testRepo := repository.NewTestRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessions := service.NewSessionService(sessionRepo, testRepo, questionRepo, userRepo, cfg)

	swept := sessions.SweepExpired()
	log.Printf("Sweep finished, %d session(s) terminated", swept)
}
