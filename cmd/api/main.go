package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/yigit/svitlms/internal/pkg/logger"
	"github.com/yigit/svitlms/internal/server"
)

// @title SVIT LMS API
// @version 1.0
// @description Course, material, assignment and grade API of the SVIT learning management system

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the configuration file")
	flag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
