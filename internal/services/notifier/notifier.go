// Package notifier reads shipment and contact messages from kafka and relays them by email.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/ShipTrack/internal/broker/kafka"
	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
)

type Relay interface {
	Send(ctx context.Context, m models.ContactMessage) error
}

// Deduper защищает от повторной доставки: kafka гарантирует at-least-once.
type Deduper interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type Consumer interface {
	Consume(ctx context.Context, handler kafka.Handler) error
}

type Notifier struct {
	relay Relay
	dedup Deduper

	statusTopic  string
	contactTopic string
	opsEmail     string

	attempts     int
	retryDelay   time.Duration
	dedupTTL     time.Duration
	restartDelay time.Duration

	startedAtUnixNano   int64
	lastMessageUnixNano atomic.Int64
	totalReceived       atomic.Int64
	totalDelivered      atomic.Int64
	totalSkipped        atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(relay Relay, dedup Deduper, statusTopic, contactTopic string) *Notifier {
	if statusTopic == "" {
		statusTopic = messages.TopicShipmentStatusChanged
	}
	if contactTopic == "" {
		contactTopic = messages.TopicContactSubmitted
	}
	return &Notifier{
		relay:             relay,
		dedup:             dedup,
		statusTopic:       statusTopic,
		contactTopic:      contactTopic,
		attempts:          3,
		retryDelay:        300 * time.Millisecond,
		dedupTTL:          24 * time.Hour,
		restartDelay:      2 * time.Second,
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

// WithOpsEmail включает письма о смене статуса на служебный адрес.
func (n *Notifier) WithOpsEmail(email string) *Notifier {
	n.opsEmail = email
	return n
}

func (n *Notifier) WithRetry(attempts int, delay time.Duration) *Notifier {
	if attempts > 0 {
		n.attempts = attempts
	}
	if delay >= 0 {
		n.retryDelay = delay
	}
	return n
}

func (n *Notifier) Topics() []string {
	return []string{n.statusTopic, n.contactTopic}
}

type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	LastMessageAt  *time.Time `json:"lastMessageAt,omitempty"`
	TotalReceived  int64      `json:"totalReceived"`
	TotalDelivered int64      `json:"totalDelivered"`
	TotalSkipped   int64      `json:"totalSkipped"`
	TotalErrors    int64      `json:"totalErrors"`
	LastError      string     `json:"lastError,omitempty"`
}

func (n *Notifier) Stats() Stats {
	st := Stats{
		StartedAt:      time.Unix(0, n.startedAtUnixNano).UTC(),
		TotalReceived:  n.totalReceived.Load(),
		TotalDelivered: n.totalDelivered.Load(),
		TotalSkipped:   n.totalSkipped.Load(),
		TotalErrors:    n.totalErrors.Load(),
	}
	if v := n.lastMessageUnixNano.Load(); v > 0 {
		t := time.Unix(0, v).UTC()
		st.LastMessageAt = &t
	}
	n.lastErrorMu.Lock()
	st.LastError = n.lastError
	n.lastErrorMu.Unlock()
	return st
}

// Run крутит consumer до отмены ctx. Ошибка fetch (например, kafka ещё не поднялась)
// не останавливает воркер: ждём и подключаемся снова.
func (n *Notifier) Run(ctx context.Context, c Consumer) error {
	for {
		err := c.Consume(ctx, n.Handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n.recordError(err)
		slog.Error("kafka consume stopped, restarting", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.restartDelay):
		}
	}
}

// Handle не возвращает ошибку для битых или недоставленных сообщений: они
// логируются и считаются в Stats, чтобы одно сообщение не блокировало партицию.
func (n *Notifier) Handle(ctx context.Context, topic string, _ []byte, value []byte) error {
	n.totalReceived.Add(1)
	n.lastMessageUnixNano.Store(time.Now().UTC().UnixNano())

	var (
		messageID string
		mail      *models.ContactMessage
	)
	switch topic {
	case n.statusTopic:
		var m messages.ShipmentStatusChanged
		if err := json.Unmarshal(value, &m); err != nil {
			n.skip(topic, "decode", err)
			return nil
		}
		slog.Info("shipment status changed",
			"tracking_number", m.TrackingNumber, "status", m.Status, "location", m.Location)
		messageID = m.MessageID
		if n.opsEmail != "" {
			mail = statusMail(n.opsEmail, m)
		}
	case n.contactTopic:
		var m messages.ContactSubmitted
		if err := json.Unmarshal(value, &m); err != nil {
			n.skip(topic, "decode", err)
			return nil
		}
		messageID = m.MessageID
		mail = &models.ContactMessage{Name: m.Name, Email: m.Email, Subject: m.Subject, Message: m.Message}
	default:
		n.skip(topic, "unknown topic", nil)
		return nil
	}

	if mail == nil || n.relay == nil {
		n.totalSkipped.Add(1)
		return nil
	}
	return n.deliver(ctx, topic, messageID, *mail)
}

func (n *Notifier) deliver(ctx context.Context, topic, messageID string, m models.ContactMessage) error {
	key := "notify:seen:" + messageID
	marked := false
	if n.dedup != nil && messageID != "" {
		first, err := n.dedup.MarkOnce(ctx, key, n.dedupTTL)
		if err != nil {
			// redis недоступен: лучше отправить дважды, чем потерять
			slog.Warn("dedup check failed", "message_id", messageID, "error", err)
		} else if !first {
			n.skip(topic, "duplicate", nil)
			return nil
		}
		marked = err == nil
	}
	// ключ снимаем на любом неуспешном выходе, иначе повторная доставка сочтёт сообщение дублем
	release := func() {
		if marked {
			if err := n.dedup.Delete(context.WithoutCancel(ctx), key); err != nil {
				slog.Warn("dedup key not released", "message_id", messageID, "error", err)
			}
		}
	}

	var err error
	for i := 0; i < n.attempts; i++ {
		if err = n.relay.Send(ctx, m); err == nil {
			n.totalDelivered.Add(1)
			return nil
		}
		if ctx.Err() != nil {
			release()
			return ctx.Err()
		}
		if i == n.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			release()
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * n.retryDelay):
		}
	}

	release()
	err = errors.Wrapf(err, "relay %s after %d attempts", topic, n.attempts)
	n.recordError(err)
	slog.Error("notification not delivered", "topic", topic, "message_id", messageID, "error", err)
	return nil
}

func (n *Notifier) skip(topic, reason string, err error) {
	n.totalSkipped.Add(1)
	if err != nil {
		n.recordError(errors.Wrap(err, reason))
	}
	slog.Warn("message skipped", "topic", topic, "reason", reason, "error", err)
}

func (n *Notifier) recordError(err error) {
	if err == nil {
		return
	}
	n.totalErrors.Add(1)
	n.lastErrorMu.Lock()
	n.lastError = err.Error()
	n.lastErrorMu.Unlock()
}

func statusMail(to string, m messages.ShipmentStatusChanged) *models.ContactMessage {
	body := fmt.Sprintf("Shipment %s is now %q at %s (%s).",
		m.TrackingNumber, m.Status, m.Location, m.OccurredAt.UTC().Format(time.RFC3339))
	if m.Note != nil && *m.Note != "" {
		body += "\nNote: " + *m.Note
	}
	return &models.ContactMessage{
		To:      to,
		Name:    "ShipTrack",
		Subject: fmt.Sprintf("[%s] %s", m.TrackingNumber, m.Status),
		Message: body,
	}
}
