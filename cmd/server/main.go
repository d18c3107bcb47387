package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/shardforge/worker/config"
	"github.com/shardforge/worker/internal/handler"
	"github.com/shardforge/worker/internal/pkg/github"
	"github.com/shardforge/worker/internal/pkg/llm"
	"github.com/shardforge/worker/internal/router"
	"github.com/shardforge/worker/internal/service"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		klog.V(6).Infof("no .env file loaded: %v", err)
	}

	cfg := config.GetConfig()

	llmClient, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	githubClient := github.NewClient(cfg)

	generateService := service.NewGenerateService(githubClient, llmClient)
	generateHandler := handler.NewGenerateHandler(generateService)

	r := router.Setup(cfg, generateHandler)

	log.Printf("Worker starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
