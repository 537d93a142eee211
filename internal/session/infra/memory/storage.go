package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/storage"
)

const subscriberBufferSize = 64

// Backend is the shared state, every Storage created on it acts as a separate client instance.
type Backend struct {
	mu          sync.RWMutex
	values      map[storage.Key]string
	subscribers map[int]*subscriber
	nextID      int
}

type subscriber struct {
	origin string
	events chan storage.Change
	done   chan struct{}
}

func NewBackend() *Backend {
	return &Backend{
		values:      make(map[storage.Key]string),
		subscribers: make(map[int]*subscriber),
	}
}

type memoryStorage struct {
	backend *Backend
	origin  string
}

func NewStorage(backend *Backend) storage.Storage {
	return &memoryStorage{
		backend: backend,
		origin:  uuid.NewString(),
	}
}

func (s *memoryStorage) Get(_ context.Context, key storage.Key) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	value, ok := s.backend.values[key]
	return value, ok, nil
}

func (s *memoryStorage) Set(_ context.Context, key storage.Key, value string) error {
	s.backend.mu.Lock()
	s.backend.values[key] = value
	subs := s.backend.listeners(s.origin)
	s.backend.mu.Unlock()

	publish(subs, storage.Change{Key: key})
	return nil
}

func (s *memoryStorage) Remove(_ context.Context, keys ...storage.Key) error {
	s.backend.mu.Lock()
	removed := make([]storage.Key, 0, len(keys))
	for _, key := range keys {
		if _, ok := s.backend.values[key]; ok {
			delete(s.backend.values, key)
			removed = append(removed, key)
		}
	}
	subs := s.backend.listeners(s.origin)
	s.backend.mu.Unlock()

	for _, key := range removed {
		publish(subs, storage.Change{Key: key, Removed: true})
	}
	return nil
}

func (s *memoryStorage) Subscribe(ctx context.Context, listener storage.Listener) (func(), error) {
	sub := &subscriber{
		origin: s.origin,
		events: make(chan storage.Change, subscriberBufferSize),
		done:   make(chan struct{}),
	}

	s.backend.mu.Lock()
	id := s.backend.nextID
	s.backend.nextID++
	s.backend.subscribers[id] = sub
	s.backend.mu.Unlock()

	go func() {
		for {
			select {
			case change := <-sub.events:
				listener(ctx, change)
			case <-sub.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.backend.mu.Lock()
			delete(s.backend.subscribers, id)
			s.backend.mu.Unlock()
			close(sub.done)
		})
	}, nil
}

// listeners must be called under mu.
func (b *Backend) listeners(origin string) []*subscriber {
	result := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		if sub.origin != origin {
			result = append(result, sub)
		}
	}
	return result
}

func publish(subs []*subscriber, change storage.Change) {
	for _, sub := range subs {
		select {
		case sub.events <- change:
		case <-sub.done:
		}
	}
}
