package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/storage"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
	pkgsql "github.com/bijuliyatra/bijuli-client/pkg/sql"
)

const (
	tableName     = "session_storage"
	ChangeChannel = "session_storage_changed"

	setOriginQuery = "SELECT set_config('bijuli.origin', $1, true)"
)

var errListenerClosed = errors.New("notification listener closed")

// changePayload is built by the session_storage trigger.
type changePayload struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Origin    string `json:"origin"`
	Removed   bool   `json:"removed"`
}

type (
	sqlStorage struct {
		db            pkgsql.TxClient
		listener      pkgsql.Listener
		namespace     string
		origin        string
		listenBackOff func() backoff.BackOff
		logger        log.Logger
	}

	Option func(*sqlStorage)
)

// WithListenBackOff sets the delays between attempts to re-establish a lost subscription.
func WithListenBackOff(newBackOff func() backoff.BackOff) Option {
	return func(s *sqlStorage) {
		s.listenBackOff = newBackOff
	}
}

// NewStorage keeps the values of one namespace, instances sharing it see each other's writes.
func NewStorage(db pkgsql.TxClient, listener pkgsql.Listener, namespace string, logger log.Logger, opts ...Option) storage.Storage {
	s := &sqlStorage{
		db:            db,
		listener:      listener,
		namespace:     namespace,
		origin:        uuid.NewString(),
		listenBackOff: defaultListenBackOff,
		logger:        logger.WithField("namespace", namespace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sqlStorage) Get(ctx context.Context, key storage.Key) (string, bool, error) {
	query, args, err := sq.Select("value").
		From(tableName).
		Where(sq.Eq{"namespace": s.namespace, "key": string(key)}).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	err = s.db.GetContext(ctx, &value, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select session value: %w", err)
	}

	return value, true, nil
}

func (s *sqlStorage) Set(ctx context.Context, key storage.Key, value string) error {
	query, args, err := sq.Insert(tableName).
		Columns("namespace", "key", "value", "updated_at").
		Values(s.namespace, string(key), value, sq.Expr("now()")).
		Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return err
	}

	return s.withinOriginTx(ctx, func(tx pkgsql.ClientTx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("upsert session value: %w", err)
		}
		return nil
	})
}

func (s *sqlStorage) Remove(ctx context.Context, keys ...storage.Key) error {
	if len(keys) == 0 {
		return nil
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, string(key))
	}

	query, args, err := sq.Delete(tableName).
		Where(sq.Eq{"namespace": s.namespace, "key": names}).
		ToSql()
	if err != nil {
		return err
	}

	return s.withinOriginTx(ctx, func(tx pkgsql.ClientTx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("delete session values: %w", err)
		}
		return nil
	})
}

// Subscribe listens in background until the returned function is called or ctx is done.
// A lost connection is re-established with backoff, the listener then gets a resync change
// because notifications sent in between are gone.
func (s *sqlStorage) Subscribe(ctx context.Context, listener storage.Listener) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	handler := func(ctx context.Context, n pkgsql.Notification) {
		change, ok := s.parseChange(ctx, n)
		if ok {
			listener(ctx, change)
		}
	}

	go func() {
		defer close(done)
		reconnect := false
		err := backoff.RetryNotify(func() error {
			if reconnect {
				listener(ctx, storage.Change{})
			}
			reconnect = true

			err := s.listener.Listen(ctx, ChangeChannel, handler)
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if err == nil {
				err = errListenerClosed
			}
			return err
		}, backoff.WithContext(s.listenBackOff(), ctx), func(err error, next time.Duration) {
			s.logger.WithError(err).WithField("retryIn", next.String()).
				Warn(ctx, "session storage subscription lost, reconnecting")
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).Error(ctx, "session storage subscription stopped")
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *sqlStorage) parseChange(ctx context.Context, n pkgsql.Notification) (storage.Change, bool) {
	if n.Payload == "" {
		return storage.Change{}, true
	}

	var payload changePayload
	err := json.Unmarshal([]byte(n.Payload), &payload)
	if err != nil {
		s.logger.WithError(err).Warn(ctx, "skip malformed session storage notification")
		return storage.Change{}, false
	}
	if payload.Namespace != s.namespace || payload.Origin == s.origin {
		return storage.Change{}, false
	}

	return storage.Change{Key: storage.Key(payload.Key), Removed: payload.Removed}, true
}

// withinOriginTx tags the transaction so the trigger can tell notifications of this instance apart.
func (s *sqlStorage) withinOriginTx(ctx context.Context, fn func(tx pkgsql.ClientTx) error) error {
	return pkgsql.WithinTx(ctx, s.db, func(tx pkgsql.ClientTx) error {
		_, err := tx.ExecContext(ctx, setOriginQuery, s.origin)
		if err != nil {
			return fmt.Errorf("set change origin: %w", err)
		}
		return fn(tx)
	})
}

func defaultListenBackOff() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.MaxInterval = time.Minute
	eb.MaxElapsedTime = 0
	return eb
}
