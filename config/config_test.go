package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/moderation"
)

func parse(t *testing.T, args ...string) (*Config, error) {
	var cfg *Config
	var parseErr error

	app := &cli.App{
		Name:  "hub-server",
		Flags: Flags(),
		Action: func(cctx *cli.Context) error {
			cfg, parseErr = FromContext(cctx)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"hub-server"}, args...)))
	return cfg, parseErr
}

func TestConfig_Defaults(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.ListenAddr)
	require.False(t, cfg.Automod.Enabled)
	require.Equal(t, ProviderOpenAI, cfg.Automod.Provider)
	require.Equal(t, 10*time.Second, cfg.Automod.Timeout)
	require.Equal(t, gate.DefaultPolicies(), cfg.Policies)
	require.Empty(t, cfg.DatabaseURL)

	gateCfg := cfg.GateConfig()
	require.False(t, gateCfg.Enabled)
}

func TestConfig_Environment(t *testing.T) {
	t.Setenv("AUTOMOD_ENABLED", "true")
	t.Setenv("AUTOMOD_API_KEY", "sk-test")
	t.Setenv("AUTOMOD_COLLECTION_POLICY", "Review")
	t.Setenv("REVIEW_URL_BASE", "https://hub.example.com/admin")

	cfg, err := parse(t)
	require.NoError(t, err)
	require.True(t, cfg.Automod.Enabled)
	require.Equal(t, "sk-test", cfg.Automod.APIKey)
	require.Equal(t, gate.PolicyReview, cfg.Policies[gate.ContentTypeCollection])

	gateCfg := cfg.GateConfig()
	require.True(t, gateCfg.Enabled)
	require.Equal(t, "https://hub.example.com/admin", gateCfg.ReviewURLBase)
}

func TestConfig_APIKeyRequiredWhenEnabled(t *testing.T) {
	_, err := parse(t, "--automod-enabled")

	var configErr *moderation.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "automod.api_key", configErr.Setting)

	// Not needed while disabled
	_, err = parse(t)
	require.NoError(t, err)

	// Not needed by rekognition
	_, err = parse(t, "--automod-enabled", "--automod-provider", "rekognition")
	require.NoError(t, err)
}

func TestConfig_Invalid(t *testing.T) {
	_, err := parse(t, "--automod-comment-policy", "shrug")
	require.Error(t, err)
	require.Contains(t, err.Error(), "automod-comment-policy")

	_, err = parse(t, "--automod-enabled", "--automod-provider", "carrier-pigeon")
	var configErr *moderation.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "automod.provider", configErr.Setting)

	_, err = parse(t, "--automod-enabled", "--automod-api-key", "sk-test", "--automod-timeout", "0s")
	require.True(t, errors.As(err, &configErr))
	require.Equal(t, "automod.timeout", configErr.Setting)
}
