package events

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"opsboard/internal/logging"
)

// Sink receives every change the listener decodes, in addition to the hub.
// The Kafka relay implements it.
type Sink interface {
	Emit(ctx context.Context, c Change) error
}

// Listener holds a dedicated Postgres connection on LISTEN and publishes
// decoded changes into the hub. Pool connections cannot be used here; the
// connection sits blocked in WaitForNotification for its whole life.
type Listener struct {
	dsn    string
	hub    *Hub
	sink   Sink // optional
	logger *logging.Logger

	backoff time.Duration
}

// NewListener creates a listener. sink may be nil.
func NewListener(dsn string, hub *Hub, sink Sink, logger *logging.Logger) *Listener {
	return &Listener{
		dsn:     dsn,
		hub:     hub,
		sink:    sink,
		logger:  logger,
		backoff: time.Second,
	}
}

// Run listens until ctx is cancelled, reconnecting with capped backoff on
// connection loss. It returns nil on cancellation.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.backoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("change listener disconnected, reconnecting", "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}
	l.logger.Info("change listener connected", "channel", Channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		c, err := Decode([]byte(n.Payload))
		if err != nil {
			l.logger.Warn("discarding malformed change notification", "error", err)
			continue
		}
		l.hub.Publish(c)
		if l.sink != nil {
			if err := l.sink.Emit(ctx, c); err != nil {
				l.logger.Warn("change relay emit failed", "table", c.Table, "error", err)
			}
		}
	}
}
