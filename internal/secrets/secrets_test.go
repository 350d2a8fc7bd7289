package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource("", "staging"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}

func TestProvider_Environment(t *testing.T) {
	env := map[string]string{"GEMINI_API_KEY": "from-env", "GEMINI-API-KEY": "direct"}
	p := NewEnvironmentProvider(zap.NewNop())
	p.getenv = func(k string) string { return env[k] }
	ctx := context.Background()

	v, err := p.GetSecret(ctx, SecretGeminiAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "direct", v)

	v, err = p.GetSecretOrEnv(ctx, "missing", "GEMINI_API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = p.GetSecret(ctx, "missing")
	assert.Error(t, err)

	assert.Equal(t, "fallback", p.GetSecretOrEnvWithDefault(ctx, "missing", "ALSO_MISSING", "fallback"))
	assert.False(t, p.IsVaultEnabled())
}

func TestVaultClient_Cache(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, name string) (string, error) {
		calls++
		if name == "broken" {
			return "", errors.New("forbidden")
		}
		return "value-" + name, nil
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v := newVaultClient(&VaultConfig{VaultName: "kv", CacheEnabled: true, CacheTTL: time.Minute}, fetch, zap.NewNop())
	v.now = func() time.Time { return now }
	ctx := context.Background()

	got, err := v.GetSecret(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", got)

	_, err = v.GetSecret(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second read is served from cache")

	now = now.Add(2 * time.Minute)
	_, err = v.GetSecret(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry is refetched")

	v.ClearCache()
	_, err = v.GetSecret(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	_, err = v.GetSecret(ctx, "broken")
	assert.ErrorContains(t, err, "broken")
}

func TestProvider_Vault(t *testing.T) {
	fetch := func(ctx context.Context, name string) (string, error) { return "vault:" + name, nil }
	p := &Provider{
		source: SourceVault,
		vault:  newVaultClient(&VaultConfig{VaultName: "kv"}, fetch, zap.NewNop()),
		logger: zap.NewNop(),
		getenv: func(string) string { return "" },
	}

	v, err := p.GetSecretOrEnv(context.Background(), SecretWarehouseURL, "WAREHOUSE_URL")
	require.NoError(t, err)
	assert.Equal(t, "vault:WAREHOUSE-URL", v)
	assert.True(t, p.IsVaultEnabled())
}
