package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"hr-analytics/internal/shared/metrics"
	"hr-analytics/internal/shared/storage/object"
	"hr-analytics/internal/shared/telemetry"
)

// IntakeRequest is the JSON body posted by the upload page.
type IntakeRequest struct {
	Content        *string `json:"content"`
	FileName       *string `json:"file_name"`
	JobDescription *string `json:"job_description"`
}

var errEmptyFileName = errors.New("object key must not be empty")

// Intake stores an uploaded resume and its job description.
// Writing the PDF is what triggers extraction downstream.
type Intake struct {
	Resumes         object.Store
	JobDescriptions object.Store
}

// Upload validates a raw request body and writes both objects.
// It returns the resume file name that was stored.
func (i *Intake) Upload(ctx context.Context, body string) (string, error) {
	if body == "" {
		return "", validationError("Missing body in the event")
	}
	var req IntakeRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	fileName := DefaultUploadName
	if req.FileName != nil {
		fileName = *req.FileName
	}
	jobDescription := ""
	if req.JobDescription != nil {
		jobDescription = strings.TrimSpace(*req.JobDescription)
	}

	if req.Content == nil || *req.Content == "" {
		return "", validationError("Missing 'content' in the body")
	}
	if jobDescription == "" {
		return "", validationError("Missing 'job_description' in the body")
	}

	pdf, err := base64.StdEncoding.DecodeString(*req.Content)
	if err != nil {
		return "", fmt.Errorf("decode content: %w", err)
	}

	if fileName == "" {
		return "", fmt.Errorf("store resume: %w", errEmptyFileName)
	}
	if _, err := i.Resumes.Put(ctx, fileName, "application/pdf", bytes.NewReader(pdf)); err != nil {
		return "", fmt.Errorf("store resume %s: %w", fileName, err)
	}
	telemetry.Info("pipeline.intake.resume_stored", map[string]any{"key": fileName, "bytes": len(pdf)})

	jdKey := JobDescriptionKey(fileName)
	if _, err := i.JobDescriptions.Put(ctx, jdKey, "text/plain", strings.NewReader(jobDescription)); err != nil {
		return "", fmt.Errorf("store job description %s: %w", jdKey, err)
	}
	telemetry.Info("pipeline.intake.job_description_stored", map[string]any{"key": jdKey})
	return fileName, nil
}

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

// HandleAPIGateway adapts Upload to an API Gateway proxy event.
// Every response, including failures, carries permissive CORS headers.
func (i *Intake) HandleAPIGateway(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if req.HTTPMethod == http.MethodOptions {
		headers := copyHeaders(corsHeaders)
		headers["Access-Control-Allow-Methods"] = "OPTIONS,POST"
		return proxyResponse(http.StatusOK, headers, map[string]string{
			"message": "CORS preflight request successful",
		})
	}

	started := time.Now()
	body := req.Body
	if req.IsBase64Encoded && body != "" {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err == nil {
			body = string(decoded)
		}
	}

	fileName, err := i.Upload(ctx, body)
	metrics.ObserveStage("intake", started, err)
	if err != nil {
		telemetry.Error("pipeline.intake.failed", map[string]any{"error": err.Error()})
		return proxyResponse(http.StatusInternalServerError, copyHeaders(corsHeaders), map[string]string{
			"message": "Failed to upload file or job description",
			"error":   err.Error(),
		})
	}
	telemetry.Info("pipeline.intake.complete", map[string]any{"key": fileName})
	return proxyResponse(http.StatusOK, copyHeaders(corsHeaders), map[string]string{
		"message": "File and job description uploaded successfully",
	})
}

func proxyResponse(status int, headers map[string]string, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte(`{"message":"internal error"}`)
	}
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

func copyHeaders(src map[string]string) map[string]string {
	out := make(map[string]string, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
