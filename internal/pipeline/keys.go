package pipeline

import "strings"

// Object naming is the only link between stages: the resume, its job
// description and its result share one base name.
const (
	DefaultUploadName = "default_file_name.pdf"
	DefaultResultName = "default_response.json"
	resultPrefix      = "responses/"
)

// JobDescriptionKey returns the job-description key for a resume file name.
// Every ".pdf" occurrence is replaced, not only the suffix.
func JobDescriptionKey(fileName string) string {
	return strings.ReplaceAll(fileName, ".pdf", ".txt")
}

// ResultKey returns the results-bucket key for a resume file name.
func ResultKey(fileName string) string {
	return resultPrefix + strings.ReplaceAll(fileName, ".pdf", ".json")
}

// IsPDFKey reports whether an object key names a PDF, ignoring case.
func IsPDFKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ".pdf")
}
