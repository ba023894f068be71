package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/board-result-api/internal/models"
	"github.com/noah-isme/board-result-api/pkg/jobs"
)

// publisher broadcasts a payload on a named channel.
type publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Ping(ctx context.Context) error
}

// outbox records delivery attempts for inspection.
type outbox interface {
	Create(ctx context.Context, req *models.NotificationRequest) error
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

type metricsRecorder interface {
	RecordNotification(outcome string)
}

// Config tunes the emitter.
type Config struct {
	Enabled        bool
	ChannelPrefix  string
	PublishTimeout time.Duration
	Workers        int
	BufferSize     int
}

// Emitter delivers result events to the notification channel. Every
// path is fire and forget: a failed or dropped delivery is logged and
// counted but never surfaces to the caller.
type Emitter struct {
	publisher  publisher
	outbox     outbox
	metrics    metricsRecorder
	dispatcher *jobs.Dispatcher
	config     Config
	logger     *zap.Logger
}

// New creates an Emitter. The outbox and metrics recorder may be nil.
func New(pub publisher, box outbox, metrics metricsRecorder, cfg Config, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = "result"
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 3 * time.Second
	}

	e := &Emitter{
		publisher: pub,
		outbox:    box,
		metrics:   metrics,
		config:    cfg,
		logger:    logger,
	}
	e.dispatcher = jobs.NewDispatcher("result-notifications", e.deliver, jobs.Config{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return e
}

// Start launches the delivery workers.
func (e *Emitter) Start(ctx context.Context) {
	if !e.config.Enabled {
		return
	}
	e.dispatcher.Start(ctx)
}

// Stop drains the delivery workers.
func (e *Emitter) Stop() {
	e.dispatcher.Stop()
}

// Emit queues a single event for delivery.
func (e *Emitter) Emit(event models.ResultEvent) {
	if !e.config.Enabled {
		return
	}
	if !e.dispatcher.Dispatch(jobs.Task{ID: uuid.NewString(), Type: event.Type, Payload: event}) {
		e.record("dropped")
	}
}

// EmitBulk queues one event per result.
func (e *Emitter) EmitBulk(events []models.ResultEvent) {
	for _, event := range events {
		e.Emit(event)
	}
}

// Healthy reports whether the transport answers a ping.
func (e *Emitter) Healthy(ctx context.Context) bool {
	if e.publisher == nil {
		return false
	}
	return e.publisher.Ping(ctx) == nil
}

func (e *Emitter) deliver(ctx context.Context, task jobs.Task) error {
	event, ok := task.Payload.(models.ResultEvent)
	if !ok {
		e.record("failed")
		return fmt.Errorf("unexpected payload type %T", task.Payload)
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.PublishTimeout)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		e.record("failed")
		return fmt.Errorf("marshal event: %w", err)
	}

	var outboxID string
	if e.outbox != nil {
		req := &models.NotificationRequest{
			Type:      event.Type,
			Recipient: event.StudentID,
			Payload:   payload,
		}
		if event.ResultID != "" && event.Type != models.EventResultStatistics {
			resultID := event.ResultID
			req.StudentResultID = &resultID
		}
		if err := e.outbox.Create(ctx, req); err != nil {
			e.logger.Warn("notification outbox write failed", zap.Error(err))
		} else {
			outboxID = req.ID
		}
	}

	channel := e.channelFor(event.Type)
	if err := e.publisher.Publish(ctx, channel, payload); err != nil {
		e.record("failed")
		if outboxID != "" {
			if merr := e.outbox.MarkFailed(ctx, outboxID); merr != nil {
				e.logger.Warn("notification outbox update failed", zap.Error(merr))
			}
		}
		return fmt.Errorf("publish %s: %w", channel, err)
	}

	e.record("sent")
	if outboxID != "" {
		if merr := e.outbox.MarkSent(ctx, outboxID); merr != nil {
			e.logger.Warn("notification outbox update failed", zap.Error(merr))
		}
	}
	return nil
}

func (e *Emitter) channelFor(eventType string) string {
	suffix := strings.ToLower(strings.TrimPrefix(eventType, "RESULT_"))
	return e.config.ChannelPrefix + "." + suffix
}

func (e *Emitter) record(outcome string) {
	if e.metrics != nil {
		e.metrics.RecordNotification(outcome)
	}
}
