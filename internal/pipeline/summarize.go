package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hr-analytics/internal/llm"
	"hr-analytics/internal/shared/metrics"
	"hr-analytics/internal/shared/storage/object"
	"hr-analytics/internal/shared/telemetry"
)

// Facet is one question asked about a resume.
type Facet struct {
	Key    string
	Prompt string
}

// Facets are asked in this order for every resume.
// The relevancy prompt keeps its {job_description} and {resume_text} markers
// verbatim; the wrapper already appends both texts.
var Facets = []Facet{
	{
		Key:    "education_level",
		Prompt: "Analyze the text and determine the level of education of the candidate, and whether he/she is pursuing MS/BS/PHD, and scale the GPAs to 4., very briefly give information about this in maximum 3 short lines.",
	},
	{
		Key:    "skills",
		Prompt: "Extract the primary skills and expertise of the candidate from the given text, in one line.",
	},
	{
		Key:    "work experience",
		Prompt: "Summarize the current and past work experience of the candidate and check whether it matches with the job description. Look out for the challenges faced and relevant solutions provided, in 2 lines.",
	},
	{
		Key: "candidate_relevancy",
		Prompt: "Analyze the following job description and resume text to assess the candidate's fit for the job:\n\n" +
			"Job Description:\n" +
			"{job_description}\n\n" +
			"Resume Text:\n" +
			"{resume_text}\n\n" +
			"Provide a detailed analysis of whether the candidate is a good fit for the job. " +
			"In your response, include:\n" +
			"- Reasons why the candidate is a good fit or not a good fit.\n" +
			"- Key areas where the candidate matches or lacks relevant skills or experience.\n" +
			"-Always provide a relavant 'Recall-Oriented Understudy for Gisting Evaluation' score of the candidate based on the relevant skills required for the job on a scale from 0 to 1. If nothing matches, please provide a score of 0",
	},
}

// Summary holds the cleaned answer for each facet. Field order is the facet order.
type Summary struct {
	EducationLevel     string `json:"education_level"`
	Skills             string `json:"skills"`
	WorkExperience     string `json:"work experience"`
	CandidateRelevancy string `json:"candidate_relevancy"`
}

func (s *Summary) set(key, value string) {
	switch key {
	case "education_level":
		s.EducationLevel = value
	case "skills":
		s.Skills = value
	case "work experience":
		s.WorkExperience = value
	case "candidate_relevancy":
		s.CandidateRelevancy = value
	}
}

// SummarizeRequest is the payload passed from extraction to summarization.
type SummarizeRequest struct {
	Text     string `json:"text"`
	FileName string `json:"file_name,omitempty"`
}

// SummarizeResponse mirrors a function invocation result.
type SummarizeResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Summarizer asks the language model about each facet and stores the result.
type Summarizer struct {
	JobDescriptions object.Store
	Results         object.Store
	LLM             llm.Completer
	// NormalizeNewlines replaces literal "\n" sequences with spaces before trimming.
	// Off by default, which only trims whitespace.
	NormalizeNewlines bool
}

// BuildPrompt wraps a facet prompt in the Human/Assistant completion format.
func BuildPrompt(prompt, resumeText, jobDescription string) string {
	return "\n\nHuman: " + prompt +
		"\nResume Text:\n" + resumeText +
		"\n\nJob Description:\n" + jobDescription +
		"\n\nAssistant:"
}

func (s *Summarizer) clean(text string) string {
	if s.NormalizeNewlines {
		text = strings.ReplaceAll(text, `\n`, " ")
	}
	return strings.TrimSpace(text)
}

// Summarize runs every facet and writes responses/<name>.json.
// Any failure aborts the batch; nothing is written in that case.
func (s *Summarizer) Summarize(ctx context.Context, req SummarizeRequest) (Summary, error) {
	if req.Text == "" {
		return Summary{}, validationError("No text provided in the payload.")
	}
	fileName := req.FileName
	if fileName == "" {
		fileName = DefaultResultName
	}

	jdKey := JobDescriptionKey(fileName)
	raw, err := object.ReadAll(ctx, s.JobDescriptions, jdKey)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch job description %s: %w", jdKey, err)
	}
	jobDescription := string(raw)
	telemetry.Info("pipeline.summarize.job_description_loaded", map[string]any{"key": jdKey, "bytes": len(raw)})

	var summary Summary
	for _, facet := range Facets {
		telemetry.Info("pipeline.summarize.facet", map[string]any{"facet": facet.Key, "file_name": fileName})
		out, err := s.LLM.Complete(ctx, BuildPrompt(facet.Prompt, req.Text, jobDescription))
		if err != nil {
			return Summary{}, fmt.Errorf("facet %q: %w", facet.Key, err)
		}
		summary.set(facet.Key, s.clean(out))
	}

	body, err := encodeJSON(summary, "")
	if err != nil {
		return Summary{}, err
	}
	resultKey := ResultKey(fileName)
	if _, err := s.Results.Put(ctx, resultKey, "application/json", bytes.NewReader(body)); err != nil {
		return Summary{}, fmt.Errorf("store result %s: %w", resultKey, err)
	}
	telemetry.Info("pipeline.summarize.result_stored", map[string]any{"key": resultKey})
	return summary, nil
}

// Handle runs Summarize and shapes the outcome as an invocation response.
func (s *Summarizer) Handle(ctx context.Context, req SummarizeRequest) SummarizeResponse {
	started := time.Now()
	summary, err := s.Summarize(ctx, req)
	metrics.ObserveStage("summarize", started, err)
	if err != nil {
		telemetry.Error("pipeline.summarize.failed", map[string]any{"file_name": req.FileName, "error": err.Error()})
		body, _ := encodeJSON(map[string]string{"error": err.Error()}, "")
		return SummarizeResponse{StatusCode: 500, Body: string(body)}
	}
	body, err := encodeJSON(summary, "  ")
	if err != nil {
		return SummarizeResponse{StatusCode: 500, Body: fmt.Sprintf(`{"error": %q}`, err.Error())}
	}
	return SummarizeResponse{StatusCode: 200, Body: string(body)}
}

// encodeJSON marshals without HTML escaping so model text is stored as written.
func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
