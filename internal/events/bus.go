// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/metrics"
	"github.com/excel-azmin/ractso/internal/recommend"
)

// Sink persists tracked views. Handle must be safe to call again with the
// same record.
type Sink interface {
	Name() string
	Handle(ctx context.Context, record recommend.ViewRecord) error
}

// Bus publishes tracked views to an in-process pub/sub and runs a router
// that feeds them to the registered sinks.
type Bus struct {
	config  Config
	pubsub  *gochannel.GoChannel
	wmLog   watermill.LoggerAdapter
	logger  zerolog.Logger
	mu      sync.Mutex
	sinks   []Sink
	started bool
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once
}

var _ recommend.Publisher = (*Bus)(nil)

// NewBus creates a bus. Sinks are registered with AddSink before Serve.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid events config: %w", err)
	}

	wmLog := watermill.NewSlogLogger(logging.NewSlogLogger("watermill"))
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, wmLog)

	return &Bus{
		config: cfg,
		pubsub: pubsub,
		wmLog:  wmLog,
		logger: logger.With().Str("component", "events").Logger(),
		ready:  make(chan struct{}),
	}, nil
}

// AddSink registers a sink. Names must be unique.
func (b *Bus) AddSink(sink Sink) error {
	if sink == nil {
		return ErrNilSink
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return ErrBusStarted
	}
	for _, s := range b.sinks {
		if s.Name() == sink.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateSink, sink.Name())
		}
	}
	b.sinks = append(b.sinks, sink)
	return nil
}

// Sinks returns the names of the registered sinks.
func (b *Bus) Sinks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, len(b.sinks))
	for i, s := range b.sinks {
		names[i] = s.Name()
	}
	return names
}

// PublishViewTracked publishes record to every sink. It does not wait for
// the sinks. Messages published while no router is running are dropped.
func (b *Bus) PublishViewTracked(ctx context.Context, record recommend.ViewRecord) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}

	msg, err := encodeViewTracked(&record)
	if err != nil {
		return err
	}
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		msg.Metadata.Set(MetadataRequestID, requestID)
	}

	if err := b.pubsub.Publish(TopicViewTracked, msg); err != nil {
		return fmt.Errorf("publish view %s: %w", record.ID, err)
	}
	return nil
}

// String names the service in supervisor logs.
func (b *Bus) String() string {
	return "event-bus"
}

// Serve runs a router until ctx is canceled. It implements suture.Service.
func (b *Bus) Serve(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.started = true
	sinks := append([]Sink(nil), b.sinks...)
	b.mu.Unlock()

	router, err := b.newRouter(sinks)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-router.Running():
			b.readyOnce.Do(func() { close(b.ready) })
			b.logger.Info().Int("sinks", len(sinks)).Msg("Event bus running")
		case <-done:
			return
		}
		select {
		case <-ctx.Done():
			if err := router.Close(); err != nil {
				b.logger.Warn().Err(err).Msg("failed to close event router")
			}
		case <-done:
		}
	}()

	runErr := router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("event router: %w", runErr)
	}
	return errors.New("event router stopped unexpectedly")
}

// Running returns a channel closed once the first router is processing
// messages.
func (b *Bus) Running() <-chan struct{} {
	return b.ready
}

// Close shuts the pub/sub down. Publishing afterwards returns ErrBusClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if err := b.pubsub.Close(); err != nil {
		return fmt.Errorf("close pubsub: %w", err)
	}
	return nil
}

// newRouter builds a router with one consumer handler per sink.
// Middleware runs outermost first: drop, retry, recover.
func (b *Bus) newRouter(sinks []Sink) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: b.config.CloseTimeout,
	}, b.wmLog)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	router.AddMiddleware(b.dropOnFailure)
	if b.config.RetryCount > 0 {
		retry := middleware.Retry{
			MaxRetries:      b.config.RetryCount,
			InitialInterval: b.config.RetryInitialInterval,
			MaxInterval:     b.config.RetryMaxInterval,
			Multiplier:      2.0,
			Logger:          b.wmLog,
		}
		router.AddMiddleware(retry.Middleware)
	}
	router.AddMiddleware(middleware.Recoverer)

	for _, sink := range sinks {
		router.AddConsumerHandler(sink.Name(), TopicViewTracked, b.pubsub, b.sinkHandler(sink))
	}
	return router, nil
}

// sinkHandler decodes a view message and hands it to sink.
func (b *Bus) sinkHandler(sink Sink) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		record, err := decodeViewTracked(msg)
		if err != nil {
			return err
		}
		ctx := msg.Context()
		if requestID := msg.Metadata.Get(MetadataRequestID); requestID != "" {
			ctx = logging.ContextWithRequestID(ctx, requestID)
		}
		if err := sink.Handle(ctx, record); err != nil {
			return fmt.Errorf("%s: %w", sink.Name(), err)
		}
		return nil
	}
}

// dropOnFailure acks messages whose handler still fails after retries, so
// a broken sink cannot stall delivery of later views.
func (b *Bus) dropOnFailure(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		sink := message.HandlerNameFromCtx(msg.Context())
		produced, err := h(msg)
		metrics.RecordSinkMessage(sink, err)
		if err != nil {
			b.logger.Error().
				Err(err).
				Str("sink", sink).
				Str("message_uuid", msg.UUID).
				Str("user_id", msg.Metadata.Get(MetadataUserID)).
				Msg("Dropping view after sink failure")
			return nil, nil
		}
		return produced, nil
	}
}
