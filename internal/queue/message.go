package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"hr-analytics/internal/shared/util"
)

// ErrTestEvent is returned for the test message S3 sends when a notification is configured.
var ErrTestEvent = errors.New("s3 test event")

// ErrEmptyBody indicates a message without payload.
var ErrEmptyBody = errors.New("empty message body")

// MessageMeta captures details useful for logging undecodable bodies.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	return MessageMeta{BodyLen: len(body), BodySHA: util.SHA256Hex(body)}
}

// DecodeNotification parses an S3 event notification delivered through SQS.
func DecodeNotification(body string) (events.S3Event, error) {
	if strings.TrimSpace(body) == "" {
		return events.S3Event{}, ErrEmptyBody
	}

	var marker struct {
		Event string `json:"Event"`
	}
	if err := json.Unmarshal([]byte(body), &marker); err != nil {
		return events.S3Event{}, fmt.Errorf("decode notification: %w", err)
	}
	if marker.Event == "s3:TestEvent" {
		return events.S3Event{}, ErrTestEvent
	}

	var event events.S3Event
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		return events.S3Event{}, fmt.Errorf("decode notification: %w", err)
	}
	return event, nil
}
