package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"hr-analytics/internal/shared/storage/object"
)

// LocalDetector reads PDF text in-process. It stands in for Textract in
// development and in the screening CLI; the bucket argument is ignored.
type LocalDetector struct {
	Store object.Store
}

func (d *LocalDetector) DetectText(ctx context.Context, _ string, key string) (string, error) {
	data, err := object.ReadAll(ctx, d.Store, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	text, err := PDFText(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtractionFailed, key, err)
	}
	return text, nil
}

// PDFText extracts plain text from a PDF and returns its non-blank lines joined by "\n".
func PDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n"), nil
}

var _ TextDetector = (*LocalDetector)(nil)
