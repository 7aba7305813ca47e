package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	textypes "github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/sethvargo/go-retry"

	"hr-analytics/internal/shared/telemetry"
)

type textractAPI interface {
	StartDocumentTextDetection(ctx context.Context, params *textract.StartDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.StartDocumentTextDetectionOutput, error)
	GetDocumentTextDetection(ctx context.Context, params *textract.GetDocumentTextDetectionInput, optFns ...func(*textract.Options)) (*textract.GetDocumentTextDetectionOutput, error)
}

// PollPolicy bounds how long the detector waits for an async job.
type PollPolicy struct {
	Initial     time.Duration
	MaxInterval time.Duration
	Timeout     time.Duration
}

// DefaultPollPolicy starts at one second, doubles up to ten and gives up after ten minutes.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Initial: time.Second, MaxInterval: 10 * time.Second, Timeout: 10 * time.Minute}
}

func (p PollPolicy) backoff() retry.Backoff {
	def := DefaultPollPolicy()
	if p.Initial <= 0 {
		p.Initial = def.Initial
	}
	if p.MaxInterval < p.Initial {
		p.MaxInterval = p.Initial
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	b := retry.NewExponential(p.Initial)
	b = retry.WithCappedDuration(p.MaxInterval, b)
	return retry.WithMaxDuration(p.Timeout, b)
}

// TextractDetector runs asynchronous Textract text detection.
type TextractDetector struct {
	api    textractAPI
	policy PollPolicy
}

// NewTextractDetector builds a detector from an AWS config.
func NewTextractDetector(cfg aws.Config, policy PollPolicy) *TextractDetector {
	return &TextractDetector{api: textract.NewFromConfig(cfg), policy: policy}
}

var errJobInProgress = errors.New("text detection in progress")

// DetectText starts a job for bucket/key, waits for a terminal status and
// concatenates every LINE block across all result pages.
func (d *TextractDetector) DetectText(ctx context.Context, bucket, key string) (string, error) {
	start, err := d.api.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &textypes.DocumentLocation{
			S3Object: &textypes.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("start text detection: %w", err)
	}
	jobID := aws.ToString(start.JobId)
	telemetry.Info("pipeline.extract.job_started", map[string]any{"job_id": jobID, "bucket": bucket, "key": key})

	var first *textract.GetDocumentTextDetectionOutput
	polls := 0
	err = retry.Do(ctx, d.policy.backoff(), func(ctx context.Context) error {
		polls++
		out, err := d.api.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{JobId: aws.String(jobID)})
		if err != nil {
			return fmt.Errorf("get text detection: %w", err)
		}
		switch out.JobStatus {
		case textypes.JobStatusSucceeded, textypes.JobStatusFailed:
			first = out
			return nil
		default:
			return retry.RetryableError(errJobInProgress)
		}
	})
	if err != nil {
		if errors.Is(err, errJobInProgress) {
			return "", fmt.Errorf("%w: job %s after %d polls", ErrExtractionTimeout, jobID, polls)
		}
		return "", err
	}

	if first.JobStatus == textypes.JobStatusFailed {
		return "", fmt.Errorf("%w: job %s: %s", ErrExtractionFailed, jobID, aws.ToString(first.StatusMessage))
	}

	lines := collectLines(nil, first.Blocks)
	next := first.NextToken
	for next != nil && *next != "" {
		page, err := d.api.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
			JobId:     aws.String(jobID),
			NextToken: next,
		})
		if err != nil {
			return "", fmt.Errorf("get text detection page: %w", err)
		}
		lines = collectLines(lines, page.Blocks)
		next = page.NextToken
	}
	telemetry.Info("pipeline.extract.job_succeeded", map[string]any{"job_id": jobID, "lines": len(lines), "polls": polls})
	return strings.Join(lines, "\n"), nil
}

func collectLines(dst []string, blocks []textypes.Block) []string {
	for _, b := range blocks {
		if b.BlockType == textypes.BlockTypeLine {
			dst = append(dst, aws.ToString(b.Text))
		}
	}
	return dst
}

var _ TextDetector = (*TextractDetector)(nil)
