package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
)

type countingSource struct {
	key   string
	err   error
	calls int
}

func (s *countingSource) APIKey(context.Context) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.key, nil
}

func TestCachedSourceMemoizesSuccess(t *testing.T) {
	inner := &countingSource{key: "secret-key"}
	src := NewCachedSource(inner, zap.NewNop())

	for i := 0; i < 3; i++ {
		key, err := src.APIKey(context.Background())
		require.NoError(t, err)
		require.Equal(t, "secret-key", key)
	}

	require.Equal(t, 1, inner.calls, "only the first call may hit the store")
}

func TestCachedSourceRetriesAfterFailure(t *testing.T) {
	inner := &countingSource{err: errors.New("store down")}
	src := NewCachedSource(inner, zap.NewNop())

	_, err := src.APIKey(context.Background())
	require.Error(t, err)

	// Failures are not cached; the next call reaches the store again and
	// succeeds once it recovers.
	inner.err = nil
	inner.key = "secret-key"

	key, err := src.APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "secret-key", key)
	require.Equal(t, 2, inner.calls)
}

func TestStaticSourceRequiresKey(t *testing.T) {
	_, err := NewStaticSource("").APIKey(context.Background())
	require.ErrorIs(t, err, core.ErrSecretUnavailable)

	key, err := NewStaticSource("k").APIKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, "k", key)
}
