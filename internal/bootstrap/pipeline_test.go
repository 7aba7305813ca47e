package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"hr-analytics/internal/pipeline"
	"hr-analytics/internal/shared/config"
)

func pipelineConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.Storage.Type = "local"
	cfg.Storage.LocalDir = t.TempDir()
	cfg.Storage.AWSRegion = "us-east-1"
	cfg.Storage.ResumeBucket = "resumes"
	cfg.Storage.JobDescriptionBucket = "jds"
	cfg.Storage.ResultsBucket = "results"
	cfg.Pipeline.SummaryProvider = "bedrock"
	cfg.Pipeline.TextDetector = "local"
	return cfg
}

func TestPipelineRunsSummarizerInProcessWithoutFunction(t *testing.T) {
	p, err := NewPipeline(context.Background(), pipelineConfig(t))
	require.NoError(t, err)

	extractor, err := p.Extractor(context.Background())
	require.NoError(t, err)
	require.IsType(t, &pipeline.LocalDetector{}, extractor.Detector)
	require.IsType(t, pipeline.LocalInvoker{}, extractor.Invoker)

	intake := p.Intake()
	require.Same(t, p.Resumes, intake.Resumes)
}

func TestPipelineUsesLambdaAndTextractWhenConfigured(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Pipeline.TextDetector = "textract"
	cfg.Pipeline.SummarizeFunction = "bedrock-handler"

	p, err := NewPipeline(context.Background(), cfg)
	require.NoError(t, err)
	extractor, err := p.Extractor(context.Background())
	require.NoError(t, err)
	require.IsType(t, &pipeline.TextractDetector{}, extractor.Detector)
	require.IsType(t, &pipeline.LambdaInvoker{}, extractor.Invoker)
}

func TestPipelineRejectsUnknownProviders(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.Pipeline.SummaryProvider = "llama"
	p, err := NewPipeline(context.Background(), cfg)
	require.NoError(t, err)
	_, err = p.Summarizer(context.Background())
	require.ErrorContains(t, err, "SUMMARY_PROVIDER")

	cfg = pipelineConfig(t)
	cfg.Pipeline.TextDetector = "ocr"
	p, err = NewPipeline(context.Background(), cfg)
	require.NoError(t, err)
	_, err = p.Extractor(context.Background())
	require.ErrorContains(t, err, "TEXT_DETECTOR")

	_, err = p.Consumer(nil)
	require.ErrorContains(t, err, "SQS_QUEUE_URL")
}

func TestLambdaConfigDefaultsSummarizeFunction(t *testing.T) {
	cfg := pipelineConfig(t)
	require.Equal(t, pipeline.DefaultSummarizeFunction, LambdaConfig(cfg).Pipeline.SummarizeFunction)

	cfg.Pipeline.SummarizeFunction = "summarize-staging"
	require.Equal(t, "summarize-staging", LambdaConfig(cfg).Pipeline.SummarizeFunction)

	p, err := NewPipeline(context.Background(), LambdaConfig(pipelineConfig(t)))
	require.NoError(t, err)
	extractor, err := p.Extractor(context.Background())
	require.NoError(t, err)
	require.IsType(t, &pipeline.LambdaInvoker{}, extractor.Invoker)
}
