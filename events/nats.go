package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		SubjectPrefix: "tabletennis",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher forwards events to NATS so other services can follow
// scoring without polling.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	logger *slog.Logger
}

func NewNATSPublisher(cfg NATSConfig, logger *slog.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("tabletennis-scoring"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Error("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Error("NATS error", slog.Any("error", err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{nc: nc, prefix: cfg.SubjectPrefix, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := Subject(p.prefix, event)
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(event.Type)},
			"Event-ID":   []string{event.ID.String()},
			"Room-ID":    []string{event.Room},
		},
	}
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}
	p.logger.Debug("published event", slog.String("subject", subject), slog.String("event_id", event.ID.String()))
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// Subject builds "<prefix>.<event type>.<room>", e.g.
// tabletennis.match.updated.6f1c... Dots in the room are replaced so the
// room stays a single subject token.
func Subject(prefix string, event Event) string {
	room := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(event.Room)
	parts := make([]string, 0, 3)
	if prefix = strings.Trim(prefix, "."); prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, string(event.Type))
	if room != "" {
		parts = append(parts, room)
	}
	return strings.Join(parts, ".")
}
