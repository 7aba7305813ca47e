package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-summarize

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"hr-analytics/internal/bootstrap"
	"hr-analytics/internal/pipeline"
	"hr-analytics/internal/shared/config"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	p, err := bootstrap.NewPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}
	summarizer, err := p.Summarizer(ctx)
	if err != nil {
		log.Fatalf("summarizer: %v", err)
	}
	lambda.Start(func(ctx context.Context, req pipeline.SummarizeRequest) (pipeline.SummarizeResponse, error) {
		return summarizer.Handle(ctx, req), nil
	})
}
