package storage

import (
	"context"
	"testing"

	"github.com/straye-as/project-desk-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "snapshots/2024/05/01.json", want: "snapshots/2024/05/01.json"},
		{key: "/leading/slash.json", want: "leading/slash.json"},
		{key: "../escape.json", wantErr: true},
		{key: "a/../../b", wantErr: true},
		{key: "", wantErr: true},
		{key: "dir/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "snapshots/2024/05/01/120000.json", "application/json", []byte(`{"a":1}`)))
	require.NoError(t, s.Put(ctx, "snapshots/2024/05/02/120000.json", "application/json", []byte(`{"a":2}`)))
	require.NoError(t, s.Put(ctx, "other/readme.txt", "text/plain", []byte("x")))

	data, err := s.Get(ctx, "snapshots/2024/05/01/120000.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	keys, err := s.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/2024/05/01/120000.json", "snapshots/2024/05/02/120000.json"}, keys)

	require.NoError(t, s.Delete(ctx, "snapshots/2024/05/01/120000.json"))
	_, err = s.Get(ctx, "snapshots/2024/05/01/120000.json")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "snapshots/2024/05/01/120000.json"), "deleting twice is fine")
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Put(context.Background(), "../outside.json", "application/json", []byte("{}")))
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	s, err := NewStorage(ctx, &config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "cloud"}, zap.NewNop())
	assert.ErrorContains(t, err, "connection string")

	_, err = NewStorage(ctx, &config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
