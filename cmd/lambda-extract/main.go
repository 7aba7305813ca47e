package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-extract

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"hr-analytics/internal/bootstrap"
	"hr-analytics/internal/pipeline"
	"hr-analytics/internal/shared/config"
)

func main() {
	ctx := context.Background()
	cfg := bootstrap.LambdaConfig(config.Load())
	p, err := bootstrap.NewPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}
	extractor, err := p.Extractor(ctx)
	if err != nil {
		log.Fatalf("extractor: %v", err)
	}
	lambda.Start(func(ctx context.Context, event events.S3Event) (pipeline.ExtractResponse, error) {
		return extractor.HandleS3Event(ctx, event), nil
	})
}
