package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeduperClaimsOncePerKey(t *testing.T) {
	d := NewDeduper(nil, time.Minute, nil)
	ctx := context.Background()

	assert.True(t, d.Claim(ctx, "pkl_approved:app-1:APPROVED"))
	assert.False(t, d.Claim(ctx, "pkl_approved:app-1:APPROVED"))
	// a different status is a different logical event
	assert.True(t, d.Claim(ctx, "pkl_approved:app-1:REJECTED"))
}

func TestDeduperExpiresClaims(t *testing.T) {
	d := NewDeduper(nil, 10*time.Millisecond, nil)
	ctx := context.Background()

	assert.True(t, d.Claim(ctx, "izin_status:leave-1:approved"))
	assert.False(t, d.Claim(ctx, "izin_status:leave-1:approved"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, d.Claim(ctx, "izin_status:leave-1:approved"))
}

func TestDeduperPrunesExpiredEntries(t *testing.T) {
	d := NewDeduper(nil, 5*time.Millisecond, nil)
	ctx := context.Background()

	d.Claim(ctx, "a")
	d.Claim(ctx, "b")
	time.Sleep(10 * time.Millisecond)

	// the next claim sweeps dead entries before recording its own
	d.Claim(ctx, "c")

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.NotContains(t, d.seen, "a")
	assert.NotContains(t, d.seen, "b")
	assert.Contains(t, d.seen, "c")
}
