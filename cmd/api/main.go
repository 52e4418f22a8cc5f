// Package main is the entry point for the task manager API server.
// It loads configuration, sets up logging and runs the HTTP server until
// the process is asked to stop.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/server"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// Version information is set during build time through linker flags.
var (
	// version represents the release version of the application.
	version = "dev"

	// commit is the git commit hash from which the application was built.
	commit = "none"

	// buildDate is the timestamp when the application was built.
	buildDate = "unknown"
)

// init loads environment variables from a .env file if present.
func init() {
	// Not finding a .env file is fine, configuration may come from the environment
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found or couldn't be loaded")
	}
}

func main() {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "./configs/config.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Task Manager API\nVersion: %s\nCommit: %s\nBuild Date: %s\n", version, commit, buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override version from build if available (not in dev mode)
	if version != "dev" {
		cfg.App.Version = version
	}

	utils.InitLogger(cfg)
	defer utils.CloseLogger()

	log.Info().
		Str("version", cfg.App.Version).
		Str("environment", cfg.App.Environment).
		Msg("Starting Task Manager API")

	utils.InitValidator()

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create server")
		utils.CloseLogger()
		os.Exit(1)
	}

	// Start blocks until shutdown and starts the maintenance tasks itself
	if err := srv.Start(); err != nil {
		log.Error().Err(err).Msg("Server error")
		utils.CloseLogger()
		os.Exit(1)
	}
}
