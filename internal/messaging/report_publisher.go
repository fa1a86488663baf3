package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"crm-voice-server/internal/model"
	"crm-voice-server/internal/service"
)

const (
	// ExchangeVoiceReports is the fanout exchange execution reports go to.
	// Dashboards and audit consumers bind their own queues.
	ExchangeVoiceReports = "voice_reports"
)

// Compile-time check
var _ service.ReportPublisher = (*RabbitMQReportPublisher)(nil)

// reportMessage is the wire form of an execution report: counts only, the
// full entities stay in the API response. Drafts in particular must not
// leave the request/response cycle.
type reportMessage struct {
	ExecutionID      string    `json:"executionId"`
	OrgID            string    `json:"orgId"`
	CreatedLeads     int       `json:"createdLeads"`
	CreatedEvents    int       `json:"createdEvents"`
	CreatedFollowUps int       `json:"createdFollowUps"`
	CreatedContacts  int       `json:"createdContacts"`
	DraftCount       int       `json:"draftCount"`
	DiagnosticCount  int       `json:"diagnosticCount"`
	ExecutedAt       time.Time `json:"executedAt"`
}

// RabbitMQReportPublisher publishes execution reports to RabbitMQ.
// The connection is assumed to be established and supervised by the caller.
type RabbitMQReportPublisher struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

func NewRabbitMQReportPublisher(conn *amqp091.Connection) (*RabbitMQReportPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Durable fanout so the exchange survives a broker restart.
	err = ch.ExchangeDeclare(
		ExchangeVoiceReports, // name
		"fanout",             // type
		true,                 // durable
		false,                // auto-deleted
		false,                // internal
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("exchange", ExchangeVoiceReports).Msg("Failed to declare exchange")
		return nil, fmt.Errorf("failed to declare exchange %q: %w", ExchangeVoiceReports, err)
	}

	log.Info().Str("exchange", ExchangeVoiceReports).Msg("Voice report exchange declared")
	return &RabbitMQReportPublisher{conn: conn, ch: ch}, nil
}

func (p *RabbitMQReportPublisher) PublishReport(ctx context.Context, report *model.ExecutionReport) error {
	msg := reportMessage{
		ExecutionID:      report.ExecutionID.String(),
		OrgID:            report.OrgID,
		CreatedLeads:     len(report.Leads),
		CreatedEvents:    len(report.Events),
		CreatedFollowUps: len(report.FollowUps),
		CreatedContacts:  len(report.Contacts),
		DraftCount:       len(report.Drafts),
		DiagnosticCount:  report.DiagnosticCount(),
		ExecutedAt:       report.ExecutedAt,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal report message: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeVoiceReports, // exchange
		"",                   // routing key (fanout ignores it)
		false,                // mandatory
		false,                // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		log.Error().Err(err).Str("executionId", msg.ExecutionID).Msg("Failed to publish execution report")
		return fmt.Errorf("failed to publish execution report: %w", err)
	}
	log.Debug().Str("executionId", msg.ExecutionID).Str("orgId", msg.OrgID).Msg("Execution report published")
	return nil
}

// Close releases the channel. The connection belongs to the caller.
func (p *RabbitMQReportPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
