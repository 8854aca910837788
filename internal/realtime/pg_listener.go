package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"fantasy-ai/backend/internal/model"
)

// NotifyChannel is the Postgres channel the messages table trigger notifies on.
// The payload is the inserted row rendered with row_to_json.
const NotifyChannel = "new_message"

// PGListener bridges Postgres LISTEN/NOTIFY into a Hub. It is the realtime feed for
// deployments whose conversations live in the hosted Postgres database.
type PGListener struct {
	dsn     string
	hub     *Hub
	backoff time.Duration
	now     func() time.Time
}

func NewPGListener(dsn string, hub *Hub) *PGListener {
	return &PGListener{dsn: dsn, hub: hub, backoff: 3 * time.Second, now: time.Now}
}

// Run listens until ctx is cancelled, reconnecting after connection failures.
func (l *PGListener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("Realtime listener disconnected, reconnecting", "error", err, "retry_in", l.backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.backoff):
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cErr := conn.Close(closeCtx); cErr != nil {
			slog.Warn("Failed to close realtime listener connection", "error", cErr)
		}
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", NotifyChannel, err)
	}
	slog.Info("Realtime listener started", "channel", NotifyChannel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed waiting for notification: %w", err)
		}
		event, err := DecodeNotification([]byte(n.Payload), l.now())
		if err != nil {
			slog.Warn("Discarding malformed realtime payload", "error", err)
			continue
		}
		l.hub.Publish(event)
	}
}

// DecodeNotification turns a row_to_json payload into a hub event.
func DecodeNotification(payload []byte, now time.Time) (Event, error) {
	var row model.MessageRow
	if err := json.Unmarshal(payload, &row); err != nil {
		return Event{}, fmt.Errorf("failed to decode message row: %w", err)
	}
	if row.UserID == "" || row.CharacterID == 0 {
		return Event{}, errors.New("message row is missing user_id or character_id")
	}
	return Event{
		UserID:      row.UserID,
		CharacterID: row.CharacterID,
		Message:     row.ToChatMessage(now),
	}, nil
}
