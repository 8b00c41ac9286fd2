package stream

import (
	"encoding/json"
	"fmt"

	"github.com/nithyasree/veritas/internal/models"
)

// StreamMessage is one raw entry read from the jobs stream.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// AnalyzeJob is a decoded stream entry. RequestID doubles as the reportId so
// publishers can poll status and fetch the report without a response channel.
type AnalyzeJob struct {
	RequestID string
	Request   *models.AnalyzeRequest
}

// ParseAnalyzeJob decodes the requestId and payload fields of a stream entry.
func ParseAnalyzeJob(msg *StreamMessage) (*AnalyzeJob, error) {
	requestID, ok := msg.Fields["requestId"]
	if !ok || requestID == "" {
		return nil, fmt.Errorf("message %s missing requestId field", msg.ID)
	}

	payload, ok := msg.Fields["payload"]
	if !ok || payload == "" {
		return nil, fmt.Errorf("message %s missing payload field", msg.ID)
	}

	var req models.AnalyzeRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return nil, fmt.Errorf("message %s has invalid payload: %w", msg.ID, err)
	}

	return &AnalyzeJob{
		RequestID: requestID,
		Request:   &req,
	}, nil
}
