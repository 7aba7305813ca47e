package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"hr-analytics/internal/llm"
	"hr-analytics/internal/llm/bedrock"
	"hr-analytics/internal/llm/gemini"
	"hr-analytics/internal/pipeline"
	"hr-analytics/internal/queue"
	"hr-analytics/internal/shared/config"
	"hr-analytics/internal/shared/storage/object"
	localstore "hr-analytics/internal/shared/storage/object/local"
	miniostore "hr-analytics/internal/shared/storage/object/minio"
	s3store "hr-analytics/internal/shared/storage/object/s3"
	"hr-analytics/internal/shared/telemetry"
)

// Pipeline holds the buckets and AWS config shared by the screening stages.
type Pipeline struct {
	Config          config.Config
	AWS             aws.Config
	Resumes         object.Store
	JobDescriptions object.Store
	Results         object.Store
}

// NewPipeline opens the three buckets on the configured backend.
func NewPipeline(ctx context.Context, cfg config.Config) (*Pipeline, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	p := &Pipeline{Config: cfg, AWS: awsCfg}

	open, err := p.storeOpener(ctx)
	if err != nil {
		return nil, err
	}
	if p.Resumes, err = open(cfg.Storage.ResumeBucket); err != nil {
		return nil, err
	}
	if p.JobDescriptions, err = open(cfg.Storage.JobDescriptionBucket); err != nil {
		return nil, err
	}
	if p.Results, err = open(cfg.Storage.ResultsBucket); err != nil {
		return nil, err
	}
	telemetry.Info("pipeline.stores_ready", map[string]any{
		"store":           cfg.Storage.Type,
		"resumes":         cfg.Storage.ResumeBucket,
		"jobDescriptions": cfg.Storage.JobDescriptionBucket,
		"results":         cfg.Storage.ResultsBucket,
	})
	return p, nil
}

func (p *Pipeline) storeOpener(ctx context.Context) (func(bucket string) (object.Store, error), error) {
	cfg := p.Config.Storage
	switch cfg.Type {
	case "s3":
		return func(bucket string) (object.Store, error) {
			return s3store.New(p.AWS, bucket, "", cfg.SSEKMSKeyID)
		}, nil
	case "minio":
		client, err := miniostore.NewClient(miniostore.Options{
			Endpoint:        cfg.MinIOEndpoint,
			AccessKeyID:     cfg.MinIOAccessKeyID,
			SecretAccessKey: cfg.MinIOSecretKey,
			UseSSL:          cfg.MinIOUseSSL,
			Region:          cfg.AWSRegion,
		})
		if err != nil {
			return nil, err
		}
		return func(bucket string) (object.Store, error) {
			return miniostore.New(ctx, client, bucket)
		}, nil
	default:
		return func(bucket string) (object.Store, error) {
			return localstore.New(cfg.LocalDir, bucket), nil
		}, nil
	}
}

// LambdaConfig fills the settings the extraction function needs when deployed
// on Lambda: without an explicit summarize function it calls the default one.
func LambdaConfig(cfg config.Config) config.Config {
	if strings.TrimSpace(cfg.Pipeline.SummarizeFunction) == "" {
		cfg.Pipeline.SummarizeFunction = pipeline.DefaultSummarizeFunction
	}
	return cfg
}

// Intake builds the upload stage.
func (p *Pipeline) Intake() *pipeline.Intake {
	return &pipeline.Intake{Resumes: p.Resumes, JobDescriptions: p.JobDescriptions}
}

// Summarizer builds the summarization stage on the configured model provider.
func (p *Pipeline) Summarizer(ctx context.Context) (*pipeline.Summarizer, error) {
	completer, err := p.completer(ctx)
	if err != nil {
		return nil, err
	}
	return &pipeline.Summarizer{
		JobDescriptions:   p.JobDescriptions,
		Results:           p.Results,
		LLM:               completer,
		NormalizeNewlines: p.Config.Pipeline.NormalizeNewlines,
	}, nil
}

func (p *Pipeline) completer(ctx context.Context) (llm.Completer, error) {
	cfg := p.Config.Pipeline
	switch cfg.SummaryProvider {
	case "", "bedrock":
		return bedrock.NewClient(p.AWS, cfg.BedrockModelID, cfg.SummaryMaxTokens), nil
	case "gemini":
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.SummaryMaxTokens)
	default:
		return nil, fmt.Errorf("unknown SUMMARY_PROVIDER %q", cfg.SummaryProvider)
	}
}

// Extractor builds the extraction stage. With no summarize function configured
// the summarizer runs in-process.
func (p *Pipeline) Extractor(ctx context.Context) (*pipeline.Extractor, error) {
	detector, err := p.detector()
	if err != nil {
		return nil, err
	}
	var invoker pipeline.Invoker
	if fn := strings.TrimSpace(p.Config.Pipeline.SummarizeFunction); fn != "" {
		invoker = pipeline.NewLambdaInvoker(p.AWS, fn)
	} else {
		summarizer, err := p.Summarizer(ctx)
		if err != nil {
			return nil, err
		}
		invoker = pipeline.LocalInvoker{Summarizer: summarizer}
	}
	return &pipeline.Extractor{Detector: detector, Invoker: invoker}, nil
}

func (p *Pipeline) detector() (pipeline.TextDetector, error) {
	cfg := p.Config.Pipeline
	switch cfg.TextDetector {
	case "", "textract":
		return pipeline.NewTextractDetector(p.AWS, pipeline.PollPolicy{
			Initial:     cfg.PollInitial,
			MaxInterval: cfg.PollMaxInterval,
			Timeout:     cfg.PollTimeout,
		}), nil
	case "local":
		return &pipeline.LocalDetector{Store: p.Resumes}, nil
	default:
		return nil, fmt.Errorf("unknown TEXT_DETECTOR %q", cfg.TextDetector)
	}
}

// Consumer builds a queue worker that feeds notifications to extractor.
func (p *Pipeline) Consumer(extractor *pipeline.Extractor) (*queue.Consumer, error) {
	url := strings.TrimSpace(p.Config.Pipeline.SQSQueueURL)
	if url == "" {
		return nil, fmt.Errorf("SQS_QUEUE_URL is required")
	}
	handle := func(ctx context.Context, event events.S3Event) {
		extractor.HandleS3Event(ctx, event)
	}
	return queue.NewConsumer(p.AWS, url, handle, queue.Options{
		Concurrency: p.Config.Pipeline.WorkerConcurrency,
	}), nil
}
