// Package announce posts fire-and-forget notifications about finished titles to
// a webhook. Delivery is best effort: events are queued, rate limited and
// retried a few times, and dropped when the queue is full or retries run out.
package announce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	EventTitleFinished = "title_finished"

	queueSize = 64
)

// Event describes something worth announcing
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OwnerID    string    `json:"owner_id"`
	TitleID    uint64    `json:"title_id"`
	TitleName  string    `json:"title_name"`
	Season     *int      `json:"season,omitempty"`
	Episode    *int      `json:"episode,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Summary renders the event as a one-line message
func (e Event) Summary() string {
	msg := fmt.Sprintf("%s finished %s", e.OwnerID, e.TitleName)
	switch {
	case e.Season != nil && e.Episode != nil:
		msg += fmt.Sprintf(" (S%02dE%02d)", *e.Season, *e.Episode)
	case e.Episode != nil:
		msg += fmt.Sprintf(" (episode %d)", *e.Episode)
	}
	return msg
}

// Nop discards every event
type Nop struct{}

func (Nop) Announce(Event) {}

type payload struct {
	Content string `json:"content"`
	Event   Event  `json:"event"`
}

// Webhook delivers events as JSON POSTs from a single background worker
type Webhook struct {
	url        string
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     zerolog.Logger

	queue  chan Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWebhook creates a webhook announcer; call Start before Announce
func NewWebhook(url string, ratePerSec, maxRetries int, logger zerolog.Logger) *Webhook {
	return &Webhook{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		maxRetries: uint64(maxRetries),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		logger:     logger.With().Str("component", "announce").Logger(),
		queue:      make(chan Event, queueSize),
	}
}

// Start launches the delivery worker
func (w *Webhook) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.queue:
				if err := w.deliver(ctx, ev); err != nil {
					w.logger.Warn().Err(err).
						Str("event_id", ev.ID).
						Uint64("title_id", ev.TitleID).
						Msg("Dropping announcement")
				}
			}
		}
	}()
}

// Stop cancels pending deliveries and waits for the worker to exit
func (w *Webhook) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// Announce queues ev without blocking
func (w *Webhook) Announce(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	select {
	case w.queue <- ev:
	default:
		w.logger.Warn().Str("event_id", ev.ID).Msg("Announcement queue full, dropping event")
	}
}

func (w *Webhook) deliver(ctx context.Context, ev Event) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload{Content: ev.Summary(), Event: ev})
	if err != nil {
		return fmt.Errorf("failed to encode announcement: %w", err)
	}

	attempt := 0
	op := func() error {
		attempt++
		return w.post(ctx, ev.ID, body)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("announcement failed after %d attempts: %w", attempt, err)
	}

	w.logger.Debug().Str("event_id", ev.ID).Int("attempts", attempt).Msg("Announcement delivered")
	return nil
}

func (w *Webhook) post(ctx context.Context, eventID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "watchweek/1.0")
	req.Header.Set("Idempotency-Key", eventID)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}
}
