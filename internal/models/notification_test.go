package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupKeyIgnoresTimestamp(t *testing.T) {
	first := Event{
		Type:      EventPKLApproved,
		Data:      map[string]interface{}{"application_id": "app-1", "status": "APPROVED"},
		Timestamp: time.Now(),
	}
	second := first
	second.Timestamp = first.Timestamp.Add(5 * time.Minute)

	assert.Equal(t, first.DedupKey(), second.DedupKey())
	assert.Equal(t, "pkl_approved:app-1:APPROVED", first.DedupKey())
}

func TestDedupKeyFallsBackToTransferID(t *testing.T) {
	event := Event{
		Type: EventPindahMoved,
		Data: map[string]interface{}{"transfer_id": "tr-1", "status": "pending_kaprog"},
	}
	assert.Equal(t, "pindah_status:tr-1:pending_kaprog", event.DedupKey())
}

func TestDedupKeyDistinguishesStatus(t *testing.T) {
	approved := Event{Type: EventPindahMoved, Data: map[string]interface{}{"transfer_id": "tr-1", "status": "approved"}}
	rejected := Event{Type: EventPindahMoved, Data: map[string]interface{}{"transfer_id": "tr-1", "status": "rejected"}}
	assert.NotEqual(t, approved.DedupKey(), rejected.DedupKey())
}
