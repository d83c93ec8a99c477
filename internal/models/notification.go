package models

import "time"

// EventType tags a notification envelope. Consumers ignore unknown types.
type EventType string

const (
	EventPKLApproved EventType = "pkl_approved"
	EventPKLRejected EventType = "pkl_rejected"
	EventPindahMoved EventType = "pindah_status"
)

// Event is the WebSocket message envelope pushed to student sessions.
type Event struct {
	Type      EventType              `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// DedupKey identifies an event by content so duplicate publishes collapse.
// The timestamp is deliberately excluded: a retried decision re-publishes the
// same logical event with a fresh timestamp and must still be suppressed.
func (e Event) DedupKey() string {
	id, _ := e.Data["application_id"].(string)
	if id == "" {
		id, _ = e.Data["transfer_id"].(string)
	}
	status, _ := e.Data["status"].(string)
	return string(e.Type) + ":" + id + ":" + status
}
