package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

const defaultConnectionTimeout = 20 * time.Second

type Config struct {
	Address           string
	Password          string
	DB                int
	ConnectionTimeout time.Duration
}

type Client struct {
	*redis.Client
	logger log.Logger
}

// NewClient returns once the server answers PING or the connection timeout elapses.
func NewClient(ctx context.Context, config Config, logger log.Logger) (*Client, error) {
	if config.ConnectionTimeout <= 0 {
		config.ConnectionTimeout = defaultConnectionTimeout
	}

	impl := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})

	err := backoff.Retry(func() error {
		return impl.Ping(ctx).Err()
	}, backoff.WithContext(connectionBackOff(config.ConnectionTimeout), ctx))
	if err != nil {
		_ = impl.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", config.Address, err)
	}

	return &Client{
		Client: impl,
		logger: logger.WithField("redisAddress", config.Address),
	}, nil
}

func (c *Client) Close(ctx context.Context) {
	err := c.Client.Close()
	if err != nil {
		c.logger.WithError(err).Error(ctx, "failed to close redis client")
	}
}

func connectionBackOff(timeout time.Duration) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = timeout / 4
	eb.MaxElapsedTime = timeout
	return eb
}
