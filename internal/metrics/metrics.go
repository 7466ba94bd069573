package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Webhook delivery counters, incremented by the gateway handlers.
var (
	WebhookReceived  Counter
	WebhookRejected  Counter
	WebhookDuplicate Counter
	WebhookProcessed Counter
	WebhookFailed    Counter
)

// WebhookSnapshot is the point-in-time view surfaced on the health
// endpoint.
type WebhookSnapshot struct {
	Received  uint64 `json:"received"`
	Rejected  uint64 `json:"rejected"`
	Duplicate uint64 `json:"duplicate"`
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
}

func SnapshotWebhooks() WebhookSnapshot {
	return WebhookSnapshot{
		Received:  WebhookReceived.Load(),
		Rejected:  WebhookRejected.Load(),
		Duplicate: WebhookDuplicate.Load(),
		Processed: WebhookProcessed.Load(),
		Failed:    WebhookFailed.Load(),
	}
}
