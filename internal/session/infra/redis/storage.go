package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/storage"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

type changeMessage struct {
	Key     string `json:"key"`
	Origin  string `json:"origin"`
	Removed bool   `json:"removed"`
}

type redisStorage struct {
	client    redis.UniversalClient
	namespace string
	origin    string
	logger    log.Logger
}

// NewStorage keeps values under "<namespace>:session:<key>" and announces writes on "<namespace>:session:changes".
func NewStorage(client redis.UniversalClient, namespace string, logger log.Logger) storage.Storage {
	return &redisStorage{
		client:    client,
		namespace: namespace,
		origin:    uuid.NewString(),
		logger:    logger.WithField("namespace", namespace),
	}
}

func (s *redisStorage) Get(ctx context.Context, key storage.Key) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStorage) Set(ctx context.Context, key storage.Key, value string) error {
	msg, err := s.encodeChange(key, false)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(key), value, 0)
		pipe.Publish(ctx, s.channel(), msg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *redisStorage) Remove(ctx context.Context, keys ...storage.Key) error {
	if len(keys) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			msg, err := s.encodeChange(key, true)
			if err != nil {
				return err
			}
			pipe.Del(ctx, s.key(key))
			pipe.Publish(ctx, s.channel(), msg)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis remove %v: %w", keys, err)
	}
	return nil
}

func (s *redisStorage) Subscribe(ctx context.Context, listener storage.Listener) (func(), error) {
	pubsub := s.client.Subscribe(ctx, s.channel())
	_, err := pubsub.Receive(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", s.channel(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		messages := pubsub.Channel()
		for {
			select {
			case msg, ok := <-messages:
				if !ok {
					return
				}
				change, ok := s.decodeChange(ctx, msg.Payload)
				if ok {
					listener(ctx, change)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		_ = pubsub.Close()
		<-done
	}, nil
}

func (s *redisStorage) key(key storage.Key) string {
	return s.namespace + ":session:" + string(key)
}

func (s *redisStorage) channel() string {
	return s.namespace + ":session:changes"
}

func (s *redisStorage) encodeChange(key storage.Key, removed bool) (string, error) {
	msg, err := json.Marshal(changeMessage{Key: string(key), Origin: s.origin, Removed: removed})
	if err != nil {
		return "", fmt.Errorf("encode change message: %w", err)
	}
	return string(msg), nil
}

func (s *redisStorage) decodeChange(ctx context.Context, payload string) (storage.Change, bool) {
	var msg changeMessage
	err := json.Unmarshal([]byte(payload), &msg)
	if err != nil {
		s.logger.WithError(err).Warn(ctx, "skip malformed session change message")
		return storage.Change{}, false
	}
	if msg.Origin == s.origin || msg.Key == "" {
		return storage.Change{}, false
	}

	return storage.Change{Key: storage.Key(msg.Key), Removed: msg.Removed}, true
}
