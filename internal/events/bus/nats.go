package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

// NATSEventBus publishes events as JSON NATS messages. The publisher's trace
// context travels in the message headers.
type NATSEventBus struct {
	conn   *nats.Conn
	prop   propagation.TextMapPropagator
	logger *logger.Logger
}

var _ EventBus = (*NATSEventBus)(nil)

func NewNATSEventBus(cfg config.NATSConfig, log *logger.Logger) (*NATSEventBus, error) {
	log = log.WithFields(zap.String("component", "nats-bus"))

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientID),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			fields := []zap.Field{zap.Error(err)}
			if sub != nil {
				fields = append(fields, zap.String("subject", sub.Subject))
			}
			log.Error("NATS async error", fields...)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Connected to NATS", zap.String("url", conn.ConnectedUrl()))
	return &NATSEventBus{
		conn:   conn,
		prop:   propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}),
		logger: log,
	}, nil
}

func (b *NATSEventBus) Publish(ctx context.Context, subject string, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	b.prop.Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if err := b.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish event %s on %s: %w", event.ID, subject, err)
	}
	return nil
}

func (b *NATSEventBus) Subscribe(subject string, handler EventHandler) (Subscription, error) {
	sub, err := b.conn.Subscribe(subject, b.deliver(handler))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return natsSubscription{sub}, nil
}

func (b *NATSEventBus) QueueSubscribe(subject, queue string, handler EventHandler) (Subscription, error) {
	sub, err := b.conn.QueueSubscribe(subject, queue, b.deliver(handler))
	if err != nil {
		return nil, fmt.Errorf("failed to join queue %s on %s: %w", queue, subject, err)
	}
	return natsSubscription{sub}, nil
}

func (b *NATSEventBus) deliver(handler EventHandler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.logger.Warn("dropping undecodable event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		ctx := context.Background()
		if msg.Header != nil {
			ctx = b.prop.Extract(ctx, propagation.HeaderCarrier(msg.Header))
		}
		if err := handler(ctx, &event); err != nil {
			b.logger.Error("Event handler error",
				zap.String("subject", msg.Subject),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}
}

// Close drains in-flight deliveries before closing the connection.
func (b *NATSEventBus) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn("NATS drain failed", zap.Error(err))
		b.conn.Close()
	}
}

func (b *NATSEventBus) IsConnected() bool {
	return b.conn.IsConnected()
}

type natsSubscription struct {
	sub *nats.Subscription
}

func (s natsSubscription) Unsubscribe() error { return s.sub.Unsubscribe() }

func (s natsSubscription) IsValid() bool { return s.sub.IsValid() }
