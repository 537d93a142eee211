//go:generate ${TOOLS_PATH}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "Listener=Listener"
package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

const (
	listenerMinReconnectInterval = time.Second
	listenerMaxReconnectInterval = time.Minute
	listenerPingInterval         = 90 * time.Second
)

type (
	Notification struct {
		Channel string
		Payload string
	}

	// NotificationHandler receives an empty Notification after a reconnect, notifications may have been lost then.
	NotificationHandler func(ctx context.Context, n Notification)

	Listener interface {
		Listen(ctx context.Context, channel string, handler NotificationHandler) error
	}

	listener struct {
		dsn    string
		logger log.Logger
	}
)

func NewListener(config *Config, logger log.Logger) Listener {
	return &listener{
		dsn:    config.DSN.String(),
		logger: logger,
	}
}

// Listen blocks until ctx is done.
func (l *listener) Listen(ctx context.Context, channel string, handler NotificationHandler) error {
	logger := l.logger.WithField("channel", channel)
	impl := pq.NewListener(
		l.dsn,
		listenerMinReconnectInterval,
		listenerMaxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				logger.WithError(err).Warn(ctx, "sql listener connection event")
			}
		},
	)
	defer func() {
		_ = impl.Close()
	}()

	err := impl.Listen(channel)
	if err != nil {
		return fmt.Errorf("listen channel %s: %w", channel, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-impl.Notify:
			if !ok {
				return errors.New("sql listener closed")
			}
			if n == nil {
				handler(ctx, Notification{Channel: channel})
				continue
			}
			handler(ctx, Notification{Channel: n.Channel, Payload: n.Extra})
		case <-time.After(listenerPingInterval):
			err = impl.Ping()
			if err != nil {
				logger.WithError(err).Warn(ctx, "sql listener ping failed")
			}
		}
	}
}
