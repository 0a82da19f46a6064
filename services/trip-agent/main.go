package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trip-agent/agent"
	"trip-agent/config"
)

func main() {
	config.InitConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := agent.NewService()
	if err != nil {
		log.Fatalf("init agent service failed: %v", err)
	}

	log.Printf("RPC server listening: %s", config.AppConfig.GetServerAddr())

	if err := runRPCServer(ctx, svc); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
