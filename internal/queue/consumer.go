package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"hr-analytics/internal/shared/metrics"
	"hr-analytics/internal/shared/telemetry"
)

const (
	defaultVisibility      = 20 * time.Minute
	defaultShutdownTimeout = 30 * time.Second
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// HandlerFunc processes one decoded notification. Failures are the handler's
// to log; the message is removed from the queue either way.
type HandlerFunc func(ctx context.Context, event events.S3Event)

// Consumer long-polls a queue of S3 notifications.
type Consumer struct {
	api             sqsAPI
	queueURL        string
	handle          HandlerFunc
	concurrency     int
	visibility      time.Duration
	shutdownTimeout time.Duration
}

// Options tune the consumer; zero values fall back to defaults.
type Options struct {
	Concurrency     int
	Visibility      time.Duration
	ShutdownTimeout time.Duration
}

// NewConsumer builds a consumer over an AWS config.
func NewConsumer(cfg aws.Config, queueURL string, handle HandlerFunc, opts Options) *Consumer {
	return newConsumer(sqs.NewFromConfig(cfg), queueURL, handle, opts)
}

func newConsumer(api sqsAPI, queueURL string, handle HandlerFunc, opts Options) *Consumer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Visibility <= 0 {
		opts.Visibility = defaultVisibility
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Consumer{
		api:             api,
		queueURL:        queueURL,
		handle:          handle,
		concurrency:     opts.Concurrency,
		visibility:      opts.Visibility,
		shutdownTimeout: opts.ShutdownTimeout,
	}
}

// Run polls until ctx is cancelled, then waits up to the shutdown timeout
// for in-flight messages.
func (c *Consumer) Run(ctx context.Context) {
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	telemetry.Info("worker.started", map[string]any{
		"queue":       c.queueURL,
		"concurrency": c.concurrency,
		"visibility":  c.visibility.String(),
	})

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   int32(c.visibility / time.Second),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.receive_failed", map[string]any{"error": err.Error()})
			continue
		}

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			metrics.IncQueueMessage("received")
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				c.handleMessage(context.WithoutCancel(ctx), m)
			}(msg)
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": c.shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(c.shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", map[string]any{"timeout": c.shutdownTimeout.String()})
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg sqstypes.Message) {
	body := aws.ToString(msg.Body)
	event, err := DecodeNotification(body)
	switch {
	case errors.Is(err, ErrTestEvent):
		telemetry.Info("worker.message.test_event", baseFields(msg))
		if c.deleteMessage(ctx, msg) {
			metrics.IncQueueMessage("skipped")
		}
		return
	case err != nil:
		meta := ComputeMeta(body)
		fields := baseFields(msg)
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err.Error()
		telemetry.Error("worker.message.decode_failed", fields)
		if c.deleteMessage(ctx, msg) {
			metrics.IncQueueMessage("unrecoverable")
		}
		return
	}

	fields := baseFields(msg)
	fields["records"] = len(event.Records)
	telemetry.Info("worker.message.received", fields)

	c.handle(ctx, event)

	if c.deleteMessage(ctx, msg) {
		telemetry.Info("worker.message.completed", baseFields(msg))
		metrics.IncQueueMessage("completed")
	}
}

func (c *Consumer) deleteMessage(ctx context.Context, msg sqstypes.Message) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.message.delete_failed", fields)
		return false
	}
	if _, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg)
		fields["error"] = err.Error()
		telemetry.Error("worker.message.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message) map[string]any {
	return map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
}

func receiveCount(msg sqstypes.Message) int {
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
