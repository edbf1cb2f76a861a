package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spa-booking-backend/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const EventBookingCreated = "BookingCreated"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type BookingLinePayload struct {
	ServiceID string         `json:"service_id"`
	Qty       int            `json:"qty"`
	UnitPrice int64          `json:"unit_price"`
	Options   models.Options `json:"options"`
}

type BookingCreatedPayload struct {
	BookingID    string               `json:"booking_id"`
	BillNumber   string               `json:"bill_number"`
	BusinessDate string               `json:"business_date"`
	Email        string               `json:"email"`
	TotalVND     int64                `json:"total_vnd"`
	TotalUSD     int64                `json:"total_usd"`
	Lines        []BookingLinePayload `json:"lines"`
}

type EventPublisher interface {
	BookingCreated(ctx context.Context, b *models.Booking) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) BookingCreated(context.Context, *models.Booking) error { return nil }
func (NopPublisher) Close() error                                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w        messageWriter
	producer string
}

func NewKafkaPublisher(brokers []string, topic, producer string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		producer: producer,
	}
}

func newBookingEnvelope(b *models.Booking, producer string) (Envelope, error) {
	p := BookingCreatedPayload{
		BookingID:    b.ID.String(),
		BillNumber:   b.BillNumber,
		BusinessDate: b.BusinessDate,
		Email:        b.Customer.Email,
		TotalVND:     b.TotalVND,
		TotalUSD:     b.TotalUSD,
		Lines:        make([]BookingLinePayload, 0, len(b.Lines)),
	}
	for _, l := range b.Lines {
		p.Lines = append(p.Lines, BookingLinePayload{
			ServiceID: l.ServiceID,
			Qty:       l.Quantity,
			UnitPrice: l.UnitPrice,
			Options:   l.Options,
		})
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventBookingCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: b.ID.String(),
		Payload:       raw,
	}, nil
}

func (p *KafkaPublisher) BookingCreated(ctx context.Context, b *models.Booking) error {
	env, err := newBookingEnvelope(b, p.producer)
	if err != nil {
		return fmt.Errorf("encode booking event: %w", err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(b.ID.String()),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
