package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaderkill/pkg/storage"
	"leaderkill/pkg/storage/memory"
)

func TestParseLocator(t *testing.T) {
	storage.Register("fake", func(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
		return memory.New(), nil
	})

	tests := []struct {
		raw    string
		scheme string
		body   string
	}{
		{"fake://host/prefix", "fake", "//host/prefix"},
		{"FAKE:thing", "fake", "thing"},
		{"/var/lib/jobstore", storage.DefaultScheme, "/var/lib/jobstore"},
		{`C:\jobstore`, storage.DefaultScheme, `C:\jobstore`},
		{"  ./relative  ", storage.DefaultScheme, "./relative"},
	}
	for _, tt := range tests {
		loc, err := storage.ParseLocator(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.scheme, loc.Scheme, tt.raw)
		assert.Equal(t, tt.body, loc.Body, tt.raw)
	}
}

func TestParseLocator_Empty(t *testing.T) {
	_, err := storage.ParseLocator("   ")
	assert.ErrorIs(t, err, storage.ErrNoSuchStore)
}

func TestResolver_WrapsUnknownFactoryErrors(t *testing.T) {
	storage.Register("broken", func(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
		return nil, errors.New("connection refused")
	})
	storage.Register("absent", func(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
		return nil, storage.ErrNoSuchStore
	})

	r := storage.NewResolver(storage.Options{})

	_, err := r.Open(context.Background(), "broken:x")
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	_, err = r.Open(context.Background(), "absent:x")
	assert.ErrorIs(t, err, storage.ErrNoSuchStore)
	assert.NotErrorIs(t, err, storage.ErrUnavailable)
}

func TestResolver_InstrumentsStore(t *testing.T) {
	backing := memory.New()
	storage.Register("shared", func(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
		return backing, nil
	})

	s, err := storage.NewResolver(storage.Options{}).Open(context.Background(), "shared:")
	require.NoError(t, err)

	require.NoError(t, s.WriteSharedFile(context.Background(), "pid.log", []byte("7")))
	got, err := backing.ReadSharedFile(context.Background(), "pid.log")
	require.NoError(t, err)
	assert.Equal(t, []byte("7"), got)

	_, err = s.ReadSharedFile(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSchemes(t *testing.T) {
	storage.Register("listed", func(ctx context.Context, loc storage.Locator, opts storage.Options) (storage.SharedStore, error) {
		return memory.New(), nil
	})
	assert.Contains(t, storage.Schemes(), "listed")
}
