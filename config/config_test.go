package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrefersFlagOverEnv(t *testing.T) {
	t.Setenv("FIGMA_API_KEY", "env-token")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := Register(fs)
	f.Token = "flag-token"
	f.EnvPath = "/nonexistent/.env"

	cfg, err := Resolve(f)
	require.NoError(t, err)
	assert.Equal(t, "flag-token", cfg.Token)
	assert.False(t, cfg.OAuth)
}

func TestResolveFallsBackToEnvVar(t *testing.T) {
	t.Setenv("FIGMA_API_KEY", "env-token")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := Register(fs)
	f.EnvPath = "/nonexistent/.env"

	cfg, err := Resolve(f)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestResolveOAuthTokenSetsOAuthFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := Register(fs)
	f.OAuthToken = "oauth-tok"
	f.EnvPath = "/nonexistent/.env"

	cfg, err := Resolve(f)
	require.NoError(t, err)
	assert.True(t, cfg.OAuth)
	assert.Equal(t, "oauth-tok", cfg.Token)
}

func TestResolveMissingCredentialIsAuthMissing(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := Register(fs)
	f.EnvPath = "/nonexistent/.env"

	_, err := Resolve(f)
	assert.ErrorIs(t, err, ErrAuthMissing)
}

func TestNormalizeFormatDefaultsToYAML(t *testing.T) {
	assert.Equal(t, FormatYAML, normalizeFormat(""))
	assert.Equal(t, FormatJSON, normalizeFormat("JSON"))
}
