package main

// Consume S3 notifications from SQS and run extraction outside Lambda:
//   SQS_QUEUE_URL=... go run ./cmd/worker

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hr-analytics/internal/bootstrap"
	"hr-analytics/internal/shared/config"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := bootstrap.NewPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}
	extractor, err := p.Extractor(ctx)
	if err != nil {
		log.Fatalf("extractor: %v", err)
	}
	consumer, err := p.Consumer(extractor)
	if err != nil {
		log.Fatalf("consumer: %v", err)
	}

	log.Printf("worker started queue=%s concurrency=%d", cfg.Pipeline.SQSQueueURL, cfg.Pipeline.WorkerConcurrency)
	consumer.Run(ctx)
	log.Printf("worker stopped")
}
