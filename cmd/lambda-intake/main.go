package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-intake

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"hr-analytics/internal/bootstrap"
	"hr-analytics/internal/shared/config"
)

func main() {
	cfg := config.Load()
	p, err := bootstrap.NewPipeline(context.Background(), cfg)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}
	intake := p.Intake()
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return intake.HandleAPIGateway(ctx, req), nil
	})
}
