package lazy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bijuliyatra/bijuli-client/pkg/lazy"
)

func TestLoader_Load_CallsProviderOnce(t *testing.T) {
	calls := 0
	loader := lazy.New(func() (string, error) {
		calls++
		return "redis", nil
	})

	first, err := loader.Load()
	assert.NoError(t, err)
	second := loader.MustLoad()

	assert.Equal(t, "redis", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLoader_IfLoaded_SkipsUnloadedAndFailed(t *testing.T) {
	failed := lazy.New(func() (int, error) { return 0, errors.New("no connection") })
	_, err := failed.Load()
	assert.Error(t, err)

	called := false
	failed.IfLoaded(func(int) { called = true })
	lazy.New(func() (int, error) { return 1, nil }).IfLoaded(func(int) { called = true })

	assert.False(t, called)
}

func TestValue_IsLoadedOnFirstUse(t *testing.T) {
	loader := lazy.Value(42)

	assert.Equal(t, 42, loader.MustLoad())
	loader.IfLoaded(func(v int) { assert.Equal(t, 42, v) })
}
