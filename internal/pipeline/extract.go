package pipeline

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"hr-analytics/internal/shared/metrics"
	"hr-analytics/internal/shared/telemetry"
)

const extractDoneMessage = "PDF processed successfully and second Lambda invoked."

// ExtractResponse is returned to the platform after a batch of records.
type ExtractResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Extractor turns stored PDFs into text and forwards it to summarization.
type Extractor struct {
	Detector TextDetector
	Invoker  Invoker
}

// HandleS3Event processes each record independently. Failures are logged and
// never stop the batch; the response is the same either way.
func (e *Extractor) HandleS3Event(ctx context.Context, event events.S3Event) ExtractResponse {
	for _, record := range event.Records {
		_ = e.HandleObject(ctx, record.S3.Bucket.Name, decodeEventKey(record.S3.Object.Key))
	}
	body, _ := json.Marshal(extractDoneMessage)
	return ExtractResponse{StatusCode: 200, Body: string(body)}
}

// HandleObject runs extraction for one stored object. key is the plain
// object key; HandleS3Event decodes notification keys before calling it.
func (e *Extractor) HandleObject(ctx context.Context, bucket, key string) error {
	telemetry.Info("pipeline.extract.received", map[string]any{"bucket": bucket, "key": key})

	if !IsPDFKey(key) {
		telemetry.Info("pipeline.extract.skipped", map[string]any{"bucket": bucket, "key": key, "reason": "not a pdf"})
		return nil
	}

	started := time.Now()
	text, err := e.Detector.DetectText(ctx, bucket, key)
	metrics.ObserveStage("extract", started, err)
	if err != nil {
		telemetry.Error("pipeline.extract.failed", map[string]any{"bucket": bucket, "key": key, "error": err.Error()})
		return err
	}

	resp, err := e.Invoker.InvokeSummarize(ctx, SummarizeRequest{Text: text, FileName: key})
	if err != nil {
		telemetry.Error("pipeline.extract.invoke_failed", map[string]any{"key": key, "error": err.Error()})
		return err
	}
	telemetry.Info("pipeline.extract.invoked", map[string]any{"key": key, "status_code": resp.StatusCode})
	return nil
}

// decodeEventKey undoes the form encoding S3 applies to notification keys.
func decodeEventKey(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
