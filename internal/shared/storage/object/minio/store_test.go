package minio

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"

	"hr-analytics/internal/shared/storage/object"
)

func TestIsNoSuchKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no such key", err: minio.ErrorResponse{Code: "NoSuchKey"}, want: true},
		{name: "wrapped not found", err: fmt.Errorf("stat: %w", minio.ErrorResponse{Code: "NotFound"}), want: true},
		{name: "access denied", err: minio.ErrorResponse{Code: "AccessDenied"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isNoSuchKey(tt.err); got != tt.want {
				t.Fatalf("isNoSuchKey(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// newTestServer serves a single bucket over path-style S3 requests.
func newTestServer(t *testing.T, bucket string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	objects := map[string][]byte{}
	modified := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == bucket || path == bucket+"/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		key := strings.TrimPrefix(path, bucket+"/")
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[key] = body
			w.Header().Set("ETag", `"etag-`+key+`"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodHead, http.MethodGet:
			body, ok := objects[key]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				if r.Method == http.MethodGet {
					_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
				}
				return
			}
			w.Header().Set("ETag", `"etag-`+key+`"`)
			w.Header().Set("Last-Modified", modified)
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(http.StatusOK)
			if r.Method == http.MethodGet {
				_, _ = w.Write(body)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	srv := newTestServer(t, "resumes")
	client, err := NewClient(Options{
		Endpoint:        strings.TrimPrefix(srv.URL, "http://"),
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Region:          "us-east-1",
	})
	require.NoError(t, err)
	store, err := New(t.Context(), client, "resumes")
	require.NoError(t, err)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	n, err := store.Put(t.Context(), "uploads/resume1.pdf", "application/pdf", strings.NewReader("%PDF-1.4 resume"))
	require.NoError(t, err)
	require.EqualValues(t, len("%PDF-1.4 resume"), n)

	rc, err := store.Get(t.Context(), "uploads/resume1.pdf")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 resume", string(body))
}

func TestStoreGetMissingKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(t.Context(), "uploads/missing.pdf")
	require.ErrorIs(t, err, object.ErrNotFound)
}
