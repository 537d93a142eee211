//go:generate ${TOOLS_PATH}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "Storage=Storage"
package storage

import (
	"context"
	"errors"
)

type Key string

const (
	KeyAuthToken    Key = "authToken"
	KeyRefreshToken Key = "refreshToken"
	KeyUserID       Key = "userId"
	KeyUserRole     Key = "userRole"
	KeyUser         Key = "user"
)

var (
	AllKeys = []Key{KeyAuthToken, KeyRefreshToken, KeyUserID, KeyUserRole, KeyUser}

	ErrClosed = errors.New("storage is closed")
)

// Change is a write made by another instance sharing the storage.
// Empty Key means the subscription was re-established and everything must be re-read.
type Change struct {
	Key     Key
	Removed bool
}

func (c Change) IsResync() bool {
	return c.Key == ""
}

type Listener func(ctx context.Context, change Change)

// Storage is a key/value store shared between client instances.
// Subscribers are never notified about writes made through the same Storage value.
type Storage interface {
	Get(ctx context.Context, key Key) (string, bool, error)
	Set(ctx context.Context, key Key, value string) error
	Remove(ctx context.Context, keys ...Key) error
	Subscribe(ctx context.Context, listener Listener) (func(), error)
}
