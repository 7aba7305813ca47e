package main

// Screen one resume against a job description on the local machine:
//   go run ./cmd/screen -resume jane.pdf -jd role.txt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hr-analytics/internal/bootstrap"
	"hr-analytics/internal/pipeline"
	"hr-analytics/internal/shared/config"
	"hr-analytics/internal/shared/storage/object"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume PDF")
	jdPath := flag.String("jd", "", "Path to job description text file")
	dataDir := flag.String("data", cfg.Storage.LocalDir, "Directory for the local buckets")
	provider := flag.String("provider", cfg.Pipeline.SummaryProvider, "Summary provider (bedrock or gemini)")
	outPath := flag.String("out", "", "Path to write the summary JSON (optional)")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" || strings.TrimSpace(*jdPath) == "" {
		exitErr("resume and jd paths are required")
	}

	cfg.Storage.Type = "local"
	cfg.Storage.LocalDir = *dataDir
	cfg.Pipeline.TextDetector = "local"
	cfg.Pipeline.SummarizeFunction = ""
	cfg.Pipeline.SummaryProvider = strings.ToLower(strings.TrimSpace(*provider))

	ctx := context.Background()
	p, err := bootstrap.NewPipeline(ctx, cfg)
	if err != nil {
		exitErr(err.Error())
	}

	body, err := requestBody(*resumePath, *jdPath)
	if err != nil {
		exitErr(err.Error())
	}
	fileName, err := p.Intake().Upload(ctx, body)
	if err != nil {
		exitErr(err.Error())
	}

	extractor, err := p.Extractor(ctx)
	if err != nil {
		exitErr(err.Error())
	}
	if err := extractor.HandleObject(ctx, cfg.Storage.ResumeBucket, fileName); err != nil {
		exitErr(err.Error())
	}

	out, err := object.ReadAll(ctx, p.Results, pipeline.ResultKey(fileName))
	if err != nil {
		exitErr(fmt.Sprintf("read summary: %v", err))
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			exitErr(err.Error())
		}
	}
	fmt.Println(string(out))
}

func requestBody(resumePath, jdPath string) (string, error) {
	pdf, err := os.ReadFile(resumePath)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	jd, err := os.ReadFile(jdPath)
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}
	content := base64.StdEncoding.EncodeToString(pdf)
	name := filepath.Base(resumePath)
	description := string(jd)
	raw, err := json.Marshal(pipeline.IntakeRequest{
		Content:        &content,
		FileName:       &name,
		JobDescription: &description,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
