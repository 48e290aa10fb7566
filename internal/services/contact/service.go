package contact

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotConfigured: ни kafka, ни relay не заданы, заявку некуда отправить.
var ErrNotConfigured = errors.New("contact delivery is not configured")

const (
	DefaultSubject = "General inquiry"
	// текст кнопки "Chat on WhatsApp" на странице партнёрства
	PartnershipGreeting = "Hello, I am interested in your Payment on Delivery Partnership."

	maxMessageLen = 5000
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Relay interface {
	Send(ctx context.Context, m models.ContactMessage) error
}

type Service struct {
	producer Producer
	relay    Relay
	topic    string
	whatsApp string
	now      func() time.Time
}

// New: если producer задан, заявка уходит в kafka (её доставит notifier),
// иначе отправляется в relay синхронно.
func New(producer Producer, relay Relay, topic, whatsAppNumber string) *Service {
	if topic == "" {
		topic = messages.TopicContactSubmitted
	}
	return &Service{
		producer: producer,
		relay:    relay,
		topic:    topic,
		whatsApp: digitsOnly(whatsAppNumber),
		now:      time.Now,
	}
}

type Result struct {
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
}

func (s *Service) Submit(ctx context.Context, in models.ContactMessage) (Result, error) {
	m, err := normalize(in)
	if err != nil {
		return Result{}, err
	}

	switch {
	case s.producer != nil:
		if err := s.publish(ctx, m); err != nil {
			return Result{}, err
		}
	case s.relay != nil:
		if err := s.relay.Send(ctx, m); err != nil {
			return Result{}, models.Transport("send contact message", err)
		}
	default:
		slog.Warn("contact message rejected: no producer or relay configured")
		return Result{}, models.Transport("deliver contact message", ErrNotConfigured)
	}

	return Result{WhatsAppURL: WhatsAppURL(s.whatsApp, ChatText(m))}, nil
}

// PartnershipURL: ссылка "Chat on WhatsApp" со страницы партнёрства.
func (s *Service) PartnershipURL() string {
	return WhatsAppURL(s.whatsApp, PartnershipGreeting)
}

func (s *Service) publish(ctx context.Context, m models.ContactMessage) error {
	msg := messages.ContactSubmitted{
		MessageID:   uuid.NewString(),
		Name:        m.Name,
		Email:       m.Email,
		Subject:     m.Subject,
		Message:     m.Message,
		SubmittedAt: s.now().UTC(),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal contact message")
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(msg.MessageID), b); err != nil {
		return models.Transport("publish contact message", err)
	}
	return nil
}

func normalize(in models.ContactMessage) (models.ContactMessage, error) {
	m := models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if m.Name == "" {
		return m, models.Required("name")
	}
	if m.Email == "" {
		return m, models.Required("email")
	}
	addr, err := mail.ParseAddress(m.Email)
	if err != nil || addr.Address != m.Email {
		return m, &models.ValidationError{Field: "email", Reason: "invalid address"}
	}
	if m.Message == "" {
		return m, models.Required("message")
	}
	if len(m.Message) > maxMessageLen {
		return m, &models.ValidationError{Field: "message", Reason: "too long"}
	}
	if m.Subject == "" {
		m.Subject = DefaultSubject
	}
	return m, nil
}

// ChatText: те же поля, что уходят в email, одним сообщением для чата.
func ChatText(m models.ContactMessage) string {
	var b strings.Builder
	b.WriteString("Name: " + m.Name + "\n")
	b.WriteString("Email: " + m.Email + "\n")
	b.WriteString("Subject: " + m.Subject + "\n\n")
	b.WriteString(m.Message)
	return b.String()
}

// WhatsAppURL строит https://wa.me/<number>?text=...; без номера возвращает "".
func WhatsAppURL(number, text string) string {
	number = digitsOnly(number)
	if number == "" {
		return ""
	}
	u := url.URL{Scheme: "https", Host: "wa.me", Path: "/" + number}
	if text != "" {
		u.RawQuery = "text=" + url.QueryEscape(text)
	}
	return u.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
