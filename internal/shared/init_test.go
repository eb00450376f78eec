// Package shared provides common initialization utilities used by the
// webhook-intake server and the review-orchestrator worker process.
// This file contains unit tests for the shared package.
package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"

	// Import providers to register them
	_ "github.com/verustcode/verustcode/internal/git/providers"
)

func init() {
	// Initialize logger for tests
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
}

// TestInitProviders_EmptyConfig tests initializing providers with empty config
func TestInitProviders_EmptyConfig(t *testing.T) {
	cfg := &config.Config{
		Git: config.GitConfig{
			Providers: []config.ProviderConfig{},
		},
	}

	providers, providerConfigs := InitProviders(cfg)

	assert.Empty(t, providers)
	assert.Empty(t, providerConfigs)
}

// TestInitProviders_SingleProvider tests initializing a single provider
func TestInitProviders_SingleProvider(t *testing.T) {
	cfg := &config.Config{
		Git: config.GitConfig{
			Providers: []config.ProviderConfig{
				{
					Type:               "github",
					URL:                "https://github.com",
					Token:              "test-token",
					WebhookSecret:      "test-secret",
					InsecureSkipVerify: false,
				},
			},
		},
	}

	providers, providerConfigs := InitProviders(cfg)

	require.Len(t, providers, 1)
	require.Len(t, providerConfigs, 1)

	prov, exists := providers["github"]
	assert.True(t, exists)
	assert.NotNil(t, prov)
	assert.Equal(t, "github", prov.Name())

	cfgVal, exists := providerConfigs["github"]
	assert.True(t, exists)
	assert.NotNil(t, cfgVal)
	assert.Equal(t, "github", cfgVal.Type)
	assert.Equal(t, "https://github.com", cfgVal.URL)
	assert.Equal(t, "test-token", cfgVal.Token)
	assert.Equal(t, "test-secret", cfgVal.WebhookSecret)
	assert.False(t, cfgVal.InsecureSkipVerify)
}

// TestInitProviders_MultipleProviders tests initializing multiple providers
func TestInitProviders_MultipleProviders(t *testing.T) {
	cfg := &config.Config{
		Git: config.GitConfig{
			Providers: []config.ProviderConfig{
				{
					Type:  "github",
					URL:   "https://github.com",
					Token: "github-token",
				},
				{
					Type:  "gitlab",
					URL:   "https://gitlab.com",
					Token: "gitlab-token",
				},
			},
		},
	}

	providers, providerConfigs := InitProviders(cfg)

	require.Len(t, providers, 2)
	require.Len(t, providerConfigs, 2)

	githubProv, exists := providers["github"]
	assert.True(t, exists)
	assert.NotNil(t, githubProv)
	assert.Equal(t, "github", githubProv.Name())

	gitlabProv, exists := providers["gitlab"]
	assert.True(t, exists)
	assert.NotNil(t, gitlabProv)
	assert.Equal(t, "gitlab", gitlabProv.Name())

	githubCfg, exists := providerConfigs["github"]
	assert.True(t, exists)
	assert.Equal(t, "github", githubCfg.Type)

	gitlabCfg, exists := providerConfigs["gitlab"]
	assert.True(t, exists)
	assert.Equal(t, "gitlab", gitlabCfg.Type)
}

// TestInitProviders_InvalidProviderType tests handling invalid provider type
func TestInitProviders_InvalidProviderType(t *testing.T) {
	cfg := &config.Config{
		Git: config.GitConfig{
			Providers: []config.ProviderConfig{
				{
					Type:  "invalid-provider",
					URL:   "https://invalid.com",
					Token: "token",
				},
			},
		},
	}

	providers, providerConfigs := InitProviders(cfg)

	// Invalid provider should be skipped
	assert.Empty(t, providers)
	assert.Empty(t, providerConfigs)
}

// TestInitProviders_SelfHosted tests initializing self-hosted provider
func TestInitProviders_SelfHosted(t *testing.T) {
	cfg := &config.Config{
		Git: config.GitConfig{
			Providers: []config.ProviderConfig{
				{
					Type:               "github",
					URL:                "https://github.example.com",
					Token:              "enterprise-token",
					InsecureSkipVerify: true,
				},
			},
		},
	}

	providers, providerConfigs := InitProviders(cfg)

	require.Len(t, providers, 1)
	require.Len(t, providerConfigs, 1)

	cfgVal := providerConfigs["github"]
	assert.Equal(t, "https://github.example.com", cfgVal.URL)
	assert.True(t, cfgVal.InsecureSkipVerify)
}

// TestProviderResolver_ResolvesConfiguredProvider verifies the closure
// returned by ProviderResolver looks up initialized providers by name.
func TestProviderResolver_ResolvesConfiguredProvider(t *testing.T) {
	cfg := &config.Config{
		Git: config.GitConfig{
			Providers: []config.ProviderConfig{
				{Type: "github", URL: "https://github.com", Token: "t"},
			},
		},
	}

	providers, _ := InitProviders(cfg)
	resolve := ProviderResolver(providers)

	p, err := resolve("github")
	require.NoError(t, err)
	assert.Equal(t, "github", p.Name())
}

// TestProviderResolver_UnknownProvider verifies resolving an unconfigured
// provider name returns an error instead of a nil Provider.
func TestProviderResolver_UnknownProvider(t *testing.T) {
	resolve := ProviderResolver(map[string]provider.Provider{})

	p, err := resolve("bitbucket")
	assert.Error(t, err)
	assert.Nil(t, p)
}
