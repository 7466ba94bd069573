package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	var c Counter

	assert.Equal(t, uint64(0), c.Load())

	c.Inc()
	c.Inc()
	c.Add(3)

	assert.Equal(t, uint64(5), c.Load())
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(5 * time.Millisecond)

	assert.GreaterOrEqual(t, timer.Duration(), 5*time.Millisecond)
}

func TestSnapshotWebhooks(t *testing.T) {
	before := SnapshotWebhooks()

	WebhookReceived.Inc()
	WebhookProcessed.Inc()

	after := SnapshotWebhooks()
	assert.Equal(t, before.Received+1, after.Received)
	assert.Equal(t, before.Processed+1, after.Processed)
}
