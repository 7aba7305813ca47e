package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hr-analytics/internal/shared/storage/object/local"
)

type stores struct {
	resumes *local.Store
	jds     *local.Store
	results *local.Store
}

func newStores(t *testing.T) stores {
	t.Helper()
	dir := t.TempDir()
	return stores{
		resumes: local.New(dir, "resumes"),
		jds:     local.New(dir, "job-descriptions"),
		results: local.New(dir, "results"),
	}
}

type recordingCompleter struct {
	mu      sync.Mutex
	prompts []string
	answers []string
	failAt  int
}

func (r *recordingCompleter) Complete(_ context.Context, prompt string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	n := len(r.prompts)
	if r.failAt > 0 && n == r.failAt {
		return "", errors.New("model unavailable")
	}
	if n <= len(r.answers) {
		return r.answers[n-1], nil
	}
	return " answer \n", nil
}

type fakeDetector struct {
	text  string
	err   error
	calls []string
}

func (f *fakeDetector) DetectText(_ context.Context, bucket, key string) (string, error) {
	f.calls = append(f.calls, bucket+"/"+key)
	return f.text, f.err
}

type fakeInvoker struct {
	reqs []SummarizeRequest
	err  error
}

func (f *fakeInvoker) InvokeSummarize(_ context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return SummarizeResponse{}, f.err
	}
	return SummarizeResponse{StatusCode: 200}, nil
}
